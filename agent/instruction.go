package agent

import "github.com/hupe1980/agentslush/internal/util"

// InstructionProvider supplies instruction text at runtime from the invocation.
type InstructionProvider interface {
	Instruction(inv *Invocation) (string, error)
}

// InstructionFunc adapts an ordinary function to an InstructionProvider.
type InstructionFunc func(inv *Invocation) (string, error)

// Instruction implements InstructionProvider.
func (f InstructionFunc) Instruction(inv *Invocation) (string, error) { return f(inv) }

// Instruction represents either a static template or a dynamic provider.
type Instruction struct {
	text     string
	provider InstructionProvider
}

// NewInstructionFromText creates an Instruction from a text/template rendered
// against the invocation kwargs.
func NewInstructionFromText(text string) Instruction { return Instruction{text: text} }

// NewInstructionFromProvider creates an Instruction from a dynamic provider.
func NewInstructionFromProvider(p InstructionProvider) Instruction { return Instruction{provider: p} }

// NewInstructionFromFunc creates an Instruction from a function.
func NewInstructionFromFunc(f func(inv *Invocation) (string, error)) Instruction {
	return Instruction{provider: InstructionFunc(f)}
}

// IsStatic returns true if the instruction is backed by a template string.
func (i Instruction) IsStatic() bool { return i.provider == nil }

// Resolve returns the instruction text for inv.
func (i Instruction) Resolve(inv *Invocation) (string, error) {
	if i.provider != nil {
		return i.provider.Instruction(inv)
	}
	return util.RenderTemplate(i.text, inv.Kwargs)
}
