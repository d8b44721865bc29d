package instructions

import (
	"github.com/ternarybob/oactree/internal/anyvalue"
	"github.com/ternarybob/oactree/internal/interfaces"
	"github.com/ternarybob/oactree/internal/models"
	"github.com/ternarybob/oactree/internal/workspace"
)

// Registered type names of the user-facing output instructions.
const (
	OutputType  = "Output"
	MessageType = "Message"
	LogType     = "Log"
)

// Output and message attribute names.
const (
	FromVariableAttribute = "fromVar"
	TextAttribute         = "text"
	SeverityAttribute     = "severity"
	MessageAttribute      = "message"
)

// Output presents a workspace value to the user; it fails iff the user
// interface refuses the value.
type Output struct {
	base
}

// NewOutput creates an Output action
func NewOutput() *Output {
	o := &Output{}
	o.init(o, OutputType, models.CategoryAction)
	declareVariableNameAttribute(&o.base, FromVariableAttribute, true)
	o.addAttributeDefinition(DescriptionAttribute, anyvalue.StringType)
	return o
}

func (o *Output) executeSingleImpl(ui interfaces.UserInterface, ws *workspace.Workspace) models.ExecutionStatus {
	value, ok := GetAttributeValue(o, ui, ws, FromVariableAttribute)
	if !ok {
		return models.StatusFailure
	}
	description := o.GetAttribute(DescriptionAttribute)
	if !ui.PutValue(value, description) {
		logError(ui, "instruction %q (type %s): user interface refused the value",
			o.GetName(), o.GetType())
		return models.StatusFailure
	}
	return models.StatusSuccess
}

// Message presents a plain text message to the user.
type Message struct {
	base
}

// NewMessage creates a Message action
func NewMessage() *Message {
	m := &Message{}
	m.init(m, MessageType, models.CategoryAction)
	m.addAttributeDefinition(TextAttribute, anyvalue.StringType).SetMandatory()
	return m
}

func (m *Message) executeSingleImpl(ui interfaces.UserInterface, ws *workspace.Workspace) models.ExecutionStatus {
	ui.Message(m.GetAttribute(TextAttribute))
	return models.StatusSuccess
}

// Log emits a log line through the user interface at a severity parsed
// from its attribute (default INFO).
type Log struct {
	base
	severity models.LogSeverity
}

// NewLog creates a Log action
func NewLog() *Log {
	l := &Log{severity: models.SeverityInfo}
	l.init(l, LogType, models.CategoryAction)
	l.addAttributeDefinition(MessageAttribute, anyvalue.StringType).SetMandatory()
	l.addAttributeDefinition(SeverityAttribute, anyvalue.StringType)
	return l
}

func (l *Log) setupImpl(ctx SetupContext) error {
	l.severity = models.SeverityInfo
	if l.HasAttribute(SeverityAttribute) {
		severity, ok := models.SeverityFromString(l.GetAttribute(SeverityAttribute))
		if !ok {
			return &models.InstructionSetupError{
				InstructionName: l.GetName(),
				InstructionType: l.GetType(),
				Reason:          "unknown severity " + l.GetAttribute(SeverityAttribute),
			}
		}
		l.severity = severity
	}
	return nil
}

func (l *Log) executeSingleImpl(ui interfaces.UserInterface, ws *workspace.Workspace) models.ExecutionStatus {
	ui.Log(l.severity, l.GetAttribute(MessageAttribute))
	return models.StatusSuccess
}

func init() {
	mustRegister(OutputType, func() Instruction { return NewOutput() })
	mustRegister(MessageType, func() Instruction { return NewMessage() })
	mustRegister(LogType, func() Instruction { return NewLog() })
}
