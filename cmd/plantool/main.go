package main

import (
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"

	"github.com/dshills/quantaplan/internal/config"
	"github.com/dshills/quantaplan/internal/log"
)

// tool holds state shared by every plantool command.
type tool struct {
	out    io.Writer
	errOut io.Writer

	configFile string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger log.Logger
}

func newApp(t *tool) *kingpin.Application {
	app := kingpin.New("plantool", "Inspect, verify and hash serialized query plans.")
	app.UsageWriter(t.errOut)
	app.ErrorWriter(t.errOut)
	app.HelpFlag.Short('h')

	app.Flag("config", "Path to a JSON or YAML configuration file.").StringVar(&t.configFile)
	app.Flag("log-level", "Log level: debug, info, warn or error.").StringVar(&t.logLevel)
	app.Flag("log-format", "Log format: text or json.").StringVar(&t.logFormat)
	app.PreAction(t.setup)

	addInspectCommand(app, t)
	addVerifyCommand(app, t)
	addHashCommand(app, t)
	return app
}

// setup loads the configuration and installs the logger before any command
// runs.
func (t *tool) setup(_ *kingpin.ParseContext) error {
	cfg := config.DefaultConfig()
	if t.configFile != "" {
		var err error
		if cfg, err = config.LoadFromFile(t.configFile); err != nil {
			return err
		}
	}
	cfg.LoadFromFlags(t.logLevel, t.logFormat)
	if err := cfg.Validate(); err != nil {
		return err
	}

	t.cfg = cfg
	t.logger = log.FromConfig(t.errOut, cfg.ToLogConfig()).With(log.String("tool", "plantool"))
	log.SetDefault(t.logger)
	return nil
}

func main() {
	t := &tool{out: os.Stdout, errOut: os.Stderr}
	app := newApp(t)
	kingpin.MustParse(app.Parse(os.Args[1:]))
}
