package logx

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Debug        bool   `split_words:"true" default:"false"`
	PrettyFormat bool   `split_words:"true" default:"false"`
	Level        string `split_words:"true"`
	// Caller adds file:line to every event.
	Caller bool `split_words:"true" default:"true"`
	// Dir, when set, also writes JSON events to a timestamped file in it.
	Dir string `split_words:"true"`
}

var DefaultConfig = &Config{
	Debug:        false,
	PrettyFormat: false,
	Caller:       true,
}

// Output is where Init sends log events. Logs go to stderr so chat replies
// on stdout stay clean.
var Output io.Writer = os.Stderr

var (
	fileMu  sync.Mutex
	logFile *os.File
)

func safe(opts ...Config) *Config {
	if len(opts) == 0 {
		return DefaultConfig
	}
	return &opts[0]
}

func Init(opts ...Config) {
	conf := safe(opts...)

	var out io.Writer = Output
	if conf.PrettyFormat {
		out = zerolog.ConsoleWriter{Out: Output}
	}

	f, err := reopenFile(conf.Dir, time.Now())
	if err != nil {
		fmt.Fprintf(Output, "logger: %v\n", err)
	}
	if f != nil {
		out = zerolog.MultiLevelWriter(out, f)
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()

	log.Logger = log.Logger.Level(level(conf))

	if conf.Caller {
		log.Logger = log.Logger.With().Caller().Stack().Logger()
	}
}

func level(conf *Config) zerolog.Level {
	if conf.Debug {
		return zerolog.DebugLevel
	}
	if s := strings.TrimSpace(conf.Level); s != "" {
		if lvl, err := zerolog.ParseLevel(strings.ToLower(s)); err == nil {
			return lvl
		}
	}
	return zerolog.InfoLevel
}

// reopenFile closes the file of a previous Init and opens
// dir/advisor_YYYYMMDD_HHMMSS.log. An empty dir disables file output.
func reopenFile(dir string, now time.Time) (*os.File, error) {
	fileMu.Lock()
	defer fileMu.Unlock()

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	name := filepath.Join(dir, "advisor_"+now.Format("20060102_150405")+".log")
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	logFile = f
	return f, nil
}
