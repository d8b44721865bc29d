package parser

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ternarybob/oactree/internal/instructions"
	"github.com/ternarybob/oactree/internal/models"
	"github.com/ternarybob/oactree/internal/procedure"
	"github.com/ternarybob/oactree/internal/workspace"
)

// Reserved element names of the procedure file format. All other elements
// name instruction or variable types.
const (
	ProcedureElement    = "Procedure"
	WorkspaceElement    = "Workspace"
	RegisterTypeElement = "RegisterType"
	PluginElement       = "Plugin"
)

// RegisterType attribute names.
const (
	JSONTypeAttr = "jsontype"
	JSONFileAttr = "jsonfile"
)

// element is the generic XML node the procedure format maps onto.
type element struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []element  `xml:",any"`
	Text     string     `xml:",chardata"`
}

func parseError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", models.ErrParse, fmt.Sprintf(format, args...))
}

// ParseFile loads a procedure from an XML file. The resulting procedure
// resolves Include files relative to its own directory through this parser.
func ParseFile(filename string) (*procedure.Procedure, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, parseError("cannot open %q: %v", filename, err)
	}
	defer f.Close()
	return parse(f, filename)
}

// ParseString loads a procedure from an XML string
func ParseString(content string) (*procedure.Procedure, error) {
	return parse(strings.NewReader(content), "")
}

func parse(r io.Reader, filename string) (*procedure.Procedure, error) {
	var root element
	decoder := xml.NewDecoder(r)
	if err := decoder.Decode(&root); err != nil {
		return nil, parseError("invalid XML: %v", err)
	}
	if root.XMLName.Local != ProcedureElement {
		return nil, parseError("root element must be %q, got %q",
			ProcedureElement, root.XMLName.Local)
	}

	proc := procedure.New(filename)
	proc.SetLoader(ParseFile)

	for _, child := range root.Children {
		switch child.XMLName.Local {
		case RegisterTypeElement:
			reg, err := parseTypeRegistration(child)
			if err != nil {
				return nil, err
			}
			proc.GetPreamble().AddTypeRegistration(reg)
		case PluginElement:
			proc.GetPreamble().AddPluginPath(strings.TrimSpace(child.Text))
		case WorkspaceElement:
			if err := parseWorkspace(proc, child); err != nil {
				return nil, err
			}
		default:
			instr, err := parseInstruction(child)
			if err != nil {
				return nil, err
			}
			proc.AddInstruction(instr)
		}
	}
	return proc, nil
}

func parseTypeRegistration(el element) (procedure.TypeRegistration, error) {
	for _, attr := range el.Attrs {
		switch attr.Name.Local {
		case JSONTypeAttr:
			return procedure.TypeRegistration{
				Mode: procedure.RegistrationJSONString,
				Data: attr.Value,
			}, nil
		case JSONFileAttr:
			return procedure.TypeRegistration{
				Mode: procedure.RegistrationJSONFile,
				Data: attr.Value,
			}, nil
		}
	}
	return procedure.TypeRegistration{},
		parseError("%s needs a %s or %s attribute", RegisterTypeElement, JSONTypeAttr, JSONFileAttr)
}

func parseWorkspace(proc *procedure.Procedure, el element) error {
	for _, child := range el.Children {
		v, err := workspace.GlobalVariableRegistry().Create(child.XMLName.Local)
		if err != nil {
			return parseError("%v", err)
		}
		name := ""
		for _, attr := range child.Attrs {
			if attr.Name.Local == instructions.NameAttribute {
				name = attr.Value
				continue
			}
			if !v.AddAttribute(attr.Name.Local, attr.Value) {
				return parseError("duplicate attribute %q on variable element %q",
					attr.Name.Local, child.XMLName.Local)
			}
		}
		if name == "" {
			return parseError("variable element %q needs a name attribute", child.XMLName.Local)
		}
		if err := proc.AddVariable(name, v); err != nil {
			return parseError("%v", err)
		}
	}
	return nil
}

func parseInstruction(el element) (instructions.Instruction, error) {
	instr, err := instructions.GlobalRegistry().Create(el.XMLName.Local)
	if err != nil {
		return nil, parseError("%v", err)
	}
	for _, attr := range el.Attrs {
		if !instr.AddAttribute(attr.Name.Local, attr.Value) {
			return nil, parseError("duplicate attribute %q on instruction %q",
				attr.Name.Local, el.XMLName.Local)
		}
	}
	for _, childEl := range el.Children {
		child, err := parseInstruction(childEl)
		if err != nil {
			return nil, err
		}
		if !instr.InsertChild(child, -1) {
			return nil, parseError("instruction %q does not accept child %q",
				el.XMLName.Local, childEl.XMLName.Local)
		}
	}
	return instr, nil
}
