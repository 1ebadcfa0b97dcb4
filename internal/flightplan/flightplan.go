// Package flightplan imports a filed plan from SimBrief, with a built-in
// demo plan for running without an account.
package flightplan

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opensquawk/opensquawk/internal/atc"
)

// ErrPlanNotFound covers an unknown SimBrief user or a user with no
// generated plan.
var ErrPlanNotFound = errors.New("flightplan: no plan found for user")

const simbriefEndpoint = "https://www.simbrief.com/api/xml.fetcher.php"

// Importer fetches the latest generated SimBrief plan for a username.
type Importer struct {
	BaseURL string // overridable for tests
	Client  *http.Client
	Log     *logrus.Logger
}

func NewImporter(log *logrus.Logger) *Importer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Importer{
		BaseURL: simbriefEndpoint,
		Client:  &http.Client{Timeout: 10 * time.Second},
		Log:     log,
	}
}

// simbriefResponse mirrors the subset of the JSON fetcher payload the
// session needs. Numeric fields arrive as strings.
type simbriefResponse struct {
	ATC struct {
		Callsign string `json:"callsign"`
	} `json:"atc"`
	Origin struct {
		ICAO    string `json:"icao_code"`
		PlanRwy string `json:"plan_rwy"`
	} `json:"origin"`
	Destination struct {
		ICAO    string `json:"icao_code"`
		PlanRwy string `json:"plan_rwy"`
	} `json:"destination"`
	General struct {
		InitialAltitude string `json:"initial_altitude"`
		Route           string `json:"route"`
		AirDistance     string `json:"air_distance"`
	} `json:"general"`
	Navlog struct {
		Fix []struct {
			ViaAirway string `json:"via_airway"`
		} `json:"fix"`
	} `json:"navlog"`
}

// Fetch retrieves the latest plan for the user. A non-200 response or a
// payload without an origin maps to ErrPlanNotFound.
func (i *Importer) Fetch(username string) (*atc.FlightPlan, error) {
	u := fmt.Sprintf("%s?username=%s&json=1", i.BaseURL, url.QueryEscape(username))
	resp, err := i.Client.Get(u)
	if err != nil {
		return nil, fmt.Errorf("simbrief fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %q (status %d)", ErrPlanNotFound, username, resp.StatusCode)
	}

	var sb simbriefResponse
	if err := json.NewDecoder(resp.Body).Decode(&sb); err != nil {
		return nil, fmt.Errorf("simbrief decode: %w", err)
	}
	if sb.Origin.ICAO == "" {
		return nil, fmt.Errorf("%w: %q", ErrPlanNotFound, username)
	}

	plan := &atc.FlightPlan{
		Callsign:      orDefault(sb.ATC.Callsign, "UNKNOWN"),
		Origin:        sb.Origin.ICAO,
		OriginRunway:  orDefault(sb.Origin.PlanRwy, "27"),
		Destination:   orDefault(sb.Destination.ICAO, "ZZZZ"),
		ArrivalRunway: orDefault(sb.Destination.PlanRwy, "25R"),
		SID:           "DIRECT",
		STAR:          "DIRECT",
		Route:         orDefault(sb.General.Route, "DCT"),
		CruiseAlt:     atoiDefault(sb.General.InitialAltitude, 35000),
		DistanceNM:    atofDefault(sb.General.AirDistance, 0),
	}
	if n := len(sb.Navlog.Fix); n > 0 {
		plan.SID = orDefault(sb.Navlog.Fix[0].ViaAirway, "DIRECT")
		if n > 1 {
			plan.STAR = orDefault(sb.Navlog.Fix[n-2].ViaAirway, "DIRECT")
		}
	}

	i.Log.WithFields(logrus.Fields{
		"callsign": plan.Callsign,
		"origin":   plan.Origin,
		"dest":     plan.Destination,
	}).Info("flight plan imported from SimBrief")
	return plan, nil
}

// Demo returns the built-in Heathrow to Frankfurt plan.
func Demo() *atc.FlightPlan {
	return &atc.FlightPlan{
		Callsign:      "SPEEDBIRD123",
		Origin:        "EGLL",
		OriginRunway:  "27R",
		Destination:   "EDDF",
		ArrivalRunway: "25C",
		SID:           "BUZAD2G",
		STAR:          "TEKTU1A",
		Route:         "BUZAD L9 KONAN",
		CruiseAlt:     37000,
		DistanceNM:    420,
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func atofDefault(s string, def float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}
