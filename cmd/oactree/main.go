package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/oactree/internal/common"
	"github.com/ternarybob/oactree/internal/interfaces"
	"github.com/ternarybob/oactree/internal/jobs"
	"github.com/ternarybob/oactree/internal/models"
	"github.com/ternarybob/oactree/internal/parser"
	"github.com/ternarybob/oactree/internal/scheduler"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles   configPaths
	procedureFile = flag.String("file", "", "Load, parse and execute the procedure file")
	procedureF    = flag.String("f", "", "Procedure file (shorthand)")
	verbosity     = flag.String("verbose", "", "Engine log severity (EMERGENCY..TRACE)")
	verbosityV    = flag.String("v", "", "Engine log severity (shorthand)")
	showVersion   = flag.Bool("version", false, "Print version information")

	config *common.Config
	logger arbor.ILogger
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()

	if *showVersion {
		fmt.Printf("oac-tree daemon version %s\n", common.GetFullVersion())
		return 0
	}

	file := *procedureFile
	if *procedureF != "" {
		file = *procedureF
	}

	// auto-discover a config file next to the working directory
	if len(configFiles) == 0 {
		if _, err := os.Stat("oactree.toml"); err == nil {
			configFiles = append(configFiles, "oactree.toml")
		}
	}

	var err error
	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		arbor.NewLogger().Error().Err(err).Msg("Failed to load configuration")
		return 1
	}

	logger = common.SetupLogger(config)

	severityName := config.Runner.Severity
	if *verbosityV != "" {
		severityName = *verbosityV
	}
	if *verbosity != "" {
		severityName = *verbosity
	}
	severity, ok := models.SeverityFromString(severityName)
	if !ok {
		logger.Error().Str("severity", severityName).Msg("Unknown log severity")
		return 1
	}

	if file == "" && len(config.Schedules) > 0 {
		return runScheduler(severity)
	}
	if file == "" {
		fmt.Fprintln(os.Stderr, "usage: oactree -f <procedure file> [-v <SEVERITY>] [-c <config file>]")
		flag.PrintDefaults()
		return 1
	}

	common.PrintBanner(file, logger)
	return runProcedure(file, severity)
}

// runProcedure executes one procedure to completion. The exit code is 0
// when the job finished (regardless of Success or Failure) and 1 on parse
// or setup errors.
func runProcedure(file string, severity models.LogSeverity) int {
	proc, err := parser.ParseFile(file)
	if err != nil {
		logger.Error().Err(err).Str("file", file).Msg("Procedure parsing failed")
		return 1
	}

	ui := newDaemonInterface(logger, severity)
	monitor := jobs.NewSimpleJobStateMonitor()
	async, err := jobs.NewAsyncRunner(proc, ui, monitor, logger)
	if err != nil {
		logger.Error().Err(err).Str("file", file).Msg("Procedure setup failed")
		return 1
	}
	defer async.Close()

	// halt the job on SIGINT/SIGTERM so blocking leaves unwind cleanly
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		if _, ok := <-signals; ok {
			logger.Warn().Msg("Signal received - halting procedure")
			async.Halt()
		}
	}()

	async.Start()
	endState := monitor.WaitForFinished()
	signal.Stop(signals)
	close(signals)

	logger.Info().Str("state", endState.String()).Msg("Procedure ended")
	return 0
}

// runScheduler runs configured procedure schedules until interrupted
func runScheduler(severity models.LogSeverity) int {
	service := scheduler.NewService(func(file string) error {
		if code := runProcedure(file, severity); code != 0 {
			return fmt.Errorf("procedure %q failed to load", file)
		}
		return nil
	}, logger)

	for _, entry := range config.Schedules {
		if err := service.Register(entry); err != nil {
			logger.Error().Err(err).Msg("Invalid schedule configuration")
			return 1
		}
	}
	service.Start()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	<-signals
	service.Stop()
	return 0
}

var _ interfaces.UserInterface = (*daemonInterface)(nil)
