package main

import (
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/oactree/internal/anyvalue"
	"github.com/ternarybob/oactree/internal/input"
	"github.com/ternarybob/oactree/internal/interfaces"
	"github.com/ternarybob/oactree/internal/models"
)

// daemonInterface is the headless user interface of the daemon: status and
// variable updates become log lines, values print through the logger and
// user input is unsupported.
type daemonInterface struct {
	logger      arbor.ILogger
	maxSeverity models.LogSeverity
}

func newDaemonInterface(logger arbor.ILogger, maxSeverity models.LogSeverity) *daemonInterface {
	return &daemonInterface{logger: logger, maxSeverity: maxSeverity}
}

func (d *daemonInterface) UpdateInstructionStatus(instr interfaces.InstructionRef) {
	d.logger.Debug().
		Str("instruction", instr.GetType()).
		Str("name", instr.GetName()).
		Str("status", instr.GetStatus().String()).
		Msg("Instruction status")
}

func (d *daemonInterface) VariableUpdated(name string, value anyvalue.AnyValue, connected bool) {
	d.logger.Debug().
		Str("variable", name).
		Str("value", anyvalue.ValueToJSON(value)).
		Bool("connected", connected).
		Msg("Variable updated")
}

func (d *daemonInterface) PutValue(value anyvalue.AnyValue, description string) bool {
	d.logger.Info().
		Str("description", description).
		Str("value", anyvalue.ValueToJSON(value)).
		Msg("Procedure output")
	return true
}

func (d *daemonInterface) RequestUserInput(request input.Request) input.Future {
	d.logger.Warn().Msg("User input requested but not supported by the daemon")
	return input.UnsupportedFuture{}
}

func (d *daemonInterface) Message(text string) {
	d.logger.Info().Msg(text)
}

func (d *daemonInterface) Log(severity models.LogSeverity, message string) {
	// lower numeric severity is more severe; drop anything below the cap
	if severity > d.maxSeverity {
		return
	}
	switch {
	case severity <= models.SeverityError:
		d.logger.Error().Str("severity", severity.String()).Msg(message)
	case severity <= models.SeverityNotice:
		d.logger.Warn().Str("severity", severity.String()).Msg(message)
	case severity == models.SeverityInfo:
		d.logger.Info().Msg(message)
	default:
		d.logger.Debug().Msg(message)
	}
}
