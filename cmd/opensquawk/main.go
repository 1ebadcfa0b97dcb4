package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/opensquawk/opensquawk/internal/atc"
	"github.com/opensquawk/opensquawk/internal/flightplan"
	"github.com/opensquawk/opensquawk/internal/mockserver"
	"github.com/opensquawk/opensquawk/internal/simlink"
	"github.com/opensquawk/opensquawk/internal/translog"
	"github.com/opensquawk/opensquawk/internal/voice"
	"github.com/opensquawk/opensquawk/pkg/util"
)

type appConfig struct {
	ATC     atc.Config     `yaml:"atc"`
	Simlink simlink.Config `yaml:"simlink"`
	Voice   struct {
		QueueSize int               `yaml:"queue_size"`
		Piper     voice.PiperConfig `yaml:"piper"`
	} `yaml:"voice"`
	Translog struct {
		Path string `yaml:"path"`
	} `yaml:"translog"`
	LogLevel string `yaml:"log_level"`
}

// triggerCommands maps console commands onto the triggers the state
// machine accepts, one per forward edge.
var triggerCommands = map[string]atc.TriggerKind{
	"clearance": atc.TriggerClearance,
	"pushback":  atc.TriggerPushback,
	"taxi":      atc.TriggerTaxi,
	"takeoff":   atc.TriggerTakeoff,
	"airborne":  atc.TriggerAirborne,
	"cruise":    atc.TriggerAtCruise,
	"descent":   atc.TriggerDescent,
	"landing":   atc.TriggerLanding,
	"landed":    atc.TriggerLanded,
	"park":      atc.TriggerPark,
}

// advisoryKinds play at low priority and may be dropped under backlog.
var advisoryKinds = map[atc.InstructionKind]bool{
	atc.KindTOD:      true,
	atc.KindAirspace: true,
	atc.KindILS:      true,
}

func main() {
	godotenv.Load()

	cfgPath := flag.String("config", "config.yaml", "path to configuration file")
	simbriefUser := flag.String("simbrief", os.Getenv("SIMBRIEF_USERNAME"), "SimBrief username, demo plan when empty")
	mockPort := flag.String("mock", "", "serve the built-in mock adapter on this port")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := util.LoadConfig[appConfig](*cfgPath)
	if err != nil {
		log.WithError(err).Warn("configuration not loaded, using defaults")
		cfg = &appConfig{}
	}
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}

	plan := importPlan(*simbriefUser, log)

	session, err := atc.New(*plan, cfg.ATC, log)
	if err != nil {
		log.WithError(err).Fatal("could not open session")
	}

	// voice: piper when installed, transcript log otherwise
	var engine voice.Engine
	if pe, err := voice.NewPiperEngine(cfg.Voice.Piper, log); err == nil {
		engine = pe
	} else {
		log.WithError(err).Info("piper unavailable, transmissions go to the log")
		engine = voice.NewLogEngine(log)
	}
	queue := voice.NewQueue(cfg.Voice.QueueSize, engine, log)
	defer queue.Close()

	var store *translog.Store
	if cfg.Translog.Path != "" {
		store, err = translog.Open(cfg.Translog.Path)
		if err != nil {
			log.WithError(err).Warn("transition log disabled")
		} else {
			defer store.Close()
		}
	}

	persisted := 0
	session.Subscribe(func(snap atc.FlightSession, instr atc.Instruction) {
		if store != nil {
			for ; persisted < len(snap.History); persisted++ {
				if err := store.Append(snap.ID, snap.History[persisted]); err != nil {
					log.WithError(err).Warn("transition not persisted")
				}
			}
		}
		if instr.Kind == "" {
			return
		}
		utt, err := atc.Render(instr, snap.Sector.Personality)
		if err != nil {
			log.WithError(err).Warn("instruction not rendered")
			return
		}
		prio := voice.PriorityHigh
		if advisoryKinds[instr.Kind] {
			prio = voice.PriorityLow
		}
		queue.Enqueue(voice.Transmission{
			Text:     utt.Text,
			Spoken:   utt.Spoken,
			VoiceTag: utt.VoiceTag,
			Facility: snap.Sector.Name,
			Priority: prio,
		})
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *mockPort != "" {
		srv := mockserver.Start(*mockPort, 2*time.Second, log)
		defer srv.Close()
		if cfg.Simlink.URL == "" {
			cfg.Simlink.URL = "ws://127.0.0.1:" + *mockPort + "/telemetry"
		}
	}
	if cfg.Simlink.URL != "" {
		client := simlink.NewClient(cfg.Simlink, log)
		go client.Run(ctx)
		go simlink.NewPoller(client, session, time.Second, log).Run(ctx)
	} else {
		log.Info("no telemetry adapter configured, manual mode")
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		cancel()
		os.Exit(0)
	}()

	console(session, log)
}

func importPlan(simbriefUser string, log *logrus.Logger) *atc.FlightPlan {
	if simbriefUser == "" {
		log.Info("no SimBrief user configured, flying the demo plan")
		return flightplan.Demo()
	}
	plan, err := flightplan.NewImporter(log).Fetch(simbriefUser)
	if err != nil {
		log.WithError(err).Warn("SimBrief import failed, flying the demo plan")
		return flightplan.Demo()
	}
	return plan
}

func console(session *atc.Session, log *logrus.Logger) {
	fmt.Println("commands: clearance pushback taxi takeoff airborne cruise descent landing landed park")
	fmt.Println("          handoff [name] | force <phase> | state | history | freqs | quit")

	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		fields := strings.Fields(strings.ToLower(sc.Text()))
		if len(fields) == 0 {
			continue
		}
		cmd, rest := fields[0], strings.Join(fields[1:], " ")

		switch {
		case cmd == "quit" || cmd == "exit":
			return
		case cmd == "state":
			snap := session.Snapshot()
			fmt.Printf("%s: %s, squawk %q, %s\n", snap.Callsign, snap.Phase, snap.Squawk, session.DescribeSector())
		case cmd == "history":
			for _, rec := range session.Snapshot().History {
				flag := ""
				if rec.Forced {
					flag = " [forced]"
				}
				fmt.Printf("%s  %s -> %s (%s)%s\n", rec.Time.Format("15:04:05"), rec.From, rec.To, rec.Trigger.Kind, flag)
			}
		case cmd == "freqs":
			for _, f := range session.ActiveFrequencies() {
				fmt.Println(f)
			}
		case cmd == "handoff":
			if _, err := session.Handoff(rest); err != nil {
				fmt.Println("rejected:", err)
			}
		case cmd == "force":
			phase, err := atc.ParsePhase(rest)
			if err != nil {
				fmt.Println("rejected:", err)
				continue
			}
			if _, err := session.ForceTransition(phase); err != nil {
				fmt.Println("rejected:", err)
			}
		default:
			kind, ok := triggerCommands[cmd]
			if !ok {
				fmt.Println("unknown command:", cmd)
				continue
			}
			if _, err := session.Advance(atc.ManualTrigger(kind)); err != nil {
				fmt.Println("rejected:", err)
			}
		}
	}
}
