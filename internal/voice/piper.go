package voice

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/sirupsen/logrus"
)

type PiperConfig struct {
	Application    string `yaml:"application"`
	VoiceDirectory string `yaml:"voice_directory"`
	SoxApplication string `yaml:"sox_application"`
	SampleRate     int    `yaml:"sample_rate"`
}

// PiperEngine synthesizes with a piper subprocess and pipes the raw PCM
// through sox for the radio effect chain and playback.
type PiperEngine struct {
	cfg PiperConfig
	log *logrus.Entry
}

// NewPiperEngine verifies both binaries and the voice directory exist up
// front rather than failing on the first transmission.
func NewPiperEngine(cfg PiperConfig, log *logrus.Logger) (*PiperEngine, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if _, err := os.Stat(cfg.Application); err != nil {
		return nil, fmt.Errorf("piper binary: %w", err)
	}
	if _, err := os.Stat(cfg.SoxApplication); err != nil {
		return nil, fmt.Errorf("sox binary: %w", err)
	}
	if _, err := os.Stat(cfg.VoiceDirectory); err != nil {
		return nil, fmt.Errorf("voice directory: %w", err)
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 22050
	}
	return &PiperEngine{cfg: cfg, log: log.WithField("role", "piper")}, nil
}

func (e *PiperEngine) Speak(tx Transmission) error {
	onnx := filepath.Join(e.cfg.VoiceDirectory, tx.VoiceTag+".onnx")

	synth := exec.Command(e.cfg.Application, "--model", onnx, "--output-raw", "--length_scale", "0.7")
	stdin, err := synth.StdinPipe()
	if err != nil {
		return fmt.Errorf("piper stdin: %w", err)
	}
	stdout, err := synth.StdoutPipe()
	if err != nil {
		return fmt.Errorf("piper stdout: %w", err)
	}
	if err := synth.Start(); err != nil {
		return fmt.Errorf("start piper: %w", err)
	}

	// close stdin to signal EOF so piper flushes the synthesis
	go func(w io.WriteCloser, text string) {
		defer w.Close()
		if _, err := io.WriteString(w, text); err != nil {
			e.log.WithError(err).Warn("write to piper stdin")
		}
	}(stdin, tx.Spoken)

	args := []string{
		"-t", "raw", "-r", fmt.Sprint(e.cfg.SampleRate), "-e", "signed-integer", "-b", "16", "-c", "1", "-",
	}
	if runtime.GOOS == "windows" {
		args = append(args, "-d")
	}
	args = append(args,
		"bandpass", "1200", "1500", "overdrive", "20", "tremolo", "5", "40",
		"pad", "0.3", "0.3",
	)
	play := exec.Command(e.cfg.SoxApplication, args...)
	play.Stdin = stdout

	e.log.WithFields(logrus.Fields{"facility": tx.Facility, "voice": tx.VoiceTag}).Info(tx.Text)

	if err := play.Start(); err != nil {
		synth.Process.Kill()
		synth.Wait()
		return fmt.Errorf("start sox: %w", err)
	}
	if err := synth.Wait(); err != nil {
		play.Wait()
		return fmt.Errorf("piper: %w", err)
	}
	if err := play.Wait(); err != nil {
		return fmt.Errorf("sox: %w", err)
	}
	return nil
}

// LogEngine is the fallback when piper is not installed. Transmissions
// are written to the transcript log only.
type LogEngine struct {
	log *logrus.Entry
}

func NewLogEngine(log *logrus.Logger) *LogEngine {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LogEngine{log: log.WithField("role", "radio")}
}

func (e *LogEngine) Speak(tx Transmission) error {
	e.log.WithField("facility", tx.Facility).Info(tx.Text)
	return nil
}
