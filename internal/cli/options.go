package cli

import (
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"pose-planner/internal/config"
	"pose-planner/internal/locale"
	"pose-planner/internal/logging"
	"pose-planner/internal/planner"
)

// rootOptions are the persistent flags. They override the config file.
type rootOptions struct {
	configPath   string
	turnRadius   float64
	runwayLength float64
	stepSize     float64
	lang         string
	logFile      string
	logLevel     string
}

func (o *rootOptions) register(cmd *cobra.Command) {
	def := config.Default()
	flags := cmd.PersistentFlags()
	flags.StringVar(&o.configPath, "config", "", "JSON config file")
	flags.Float64Var(&o.turnRadius, "turn-radius", def.TurnRadius, "minimum turn radius")
	flags.Float64Var(&o.runwayLength, "runway", def.RunwayLength, "straight approach length before the end pose")
	flags.Float64Var(&o.stepSize, "step", def.StepSize, "distance between path samples")
	flags.StringVar(&o.lang, "lang", def.Language, "message language (en, tr)")
	flags.StringVar(&o.logFile, "log-file", def.LogFile, "write logs to this rotating file")
	flags.StringVar(&o.logLevel, "log-level", def.LogLevel, "log level (debug, info, warn, error)")
}

// config loads the file, if any, then applies the flags that were set.
func (o *rootOptions) config(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	flags := cmd.Flags()
	if flags.Changed("turn-radius") {
		cfg.TurnRadius = o.turnRadius
	}
	if flags.Changed("runway") {
		cfg.RunwayLength = o.runwayLength
	}
	if flags.Changed("step") {
		cfg.StepSize = o.stepSize
	}
	if flags.Changed("lang") {
		cfg.Language = o.lang
	}
	if flags.Changed("log-file") {
		cfg.LogFile = o.logFile
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	return cfg, cfg.Validate()
}

// env is what every command needs once the flags are resolved.
type env struct {
	cfg      config.Config
	messages locale.Messages
	logger   *zap.SugaredLogger
	closeLog func() error
}

// setup resolves the configuration and opens the logger. console receives
// logs when no log file is configured; nil discards them.
func (o *rootOptions) setup(cmd *cobra.Command, console io.Writer) (*env, error) {
	cfg, err := o.config(cmd)
	if err != nil {
		return nil, err
	}
	logger, closeLog, err := logging.New("pose-planner", logging.Options{
		File:    cfg.LogFile,
		Level:   cfg.LogLevel,
		Console: console,
	})
	if err != nil {
		return nil, err
	}
	return &env{
		cfg:      cfg,
		messages: locale.For(cfg.Language),
		logger:   logger,
		closeLog: closeLog,
	}, nil
}

func (e *env) planner() *planner.Dubins {
	d := planner.NewDubins(e.logger)
	d.MaxSamples = e.cfg.MaxSamples
	return d
}

// close flushes the logger and folds its error into err.
func (e *env) close(err *error) {
	*err = multierr.Combine(*err, e.closeLog())
}
