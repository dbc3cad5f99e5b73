package sim

import (
	"errors"
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/gemfall/prefabs"
)

var ErrScriptOutput = errors.New("sim: reaction script did not set vx and vy")

type scriptVar struct {
	name  string
	value any
}

// reactionInputs are the globals a reaction script can read; Eval
// overwrites them on every run.
var reactionInputs = []scriptVar{
	{"default_x", 0.0},
	{"default_y", 0.0},
	{"contacts", 0},
}

// ReactionScript computes the player's reaction velocity for a map contact.
// The script sees default_x, default_y and contacts (player/map begin
// contacts so far, including this one) and must set vx and vy.
type ReactionScript struct {
	name     string
	compiled *tengo.Compiled
}

// LoadReactionScript compiles a script from the prefab scripts directory.
func LoadReactionScript(name string) (*ReactionScript, error) {
	src, err := prefabs.LoadScript(name)
	if err != nil {
		return nil, err
	}
	return NewReactionScript(name, src)
}

func NewReactionScript(name string, src []byte) (*ReactionScript, error) {
	script := tengo.NewScript(src)
	if err := declareInputs(script, reactionInputs); err != nil {
		return nil, fmt.Errorf("sim: %s: %w", name, err)
	}
	script.SetImports(stdlib.GetModuleMap("math"))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("sim: compile %s: %w", name, err)
	}
	return &ReactionScript{name: name, compiled: compiled}, nil
}

func (r *ReactionScript) Name() string {
	return r.name
}

// Eval runs the script for one contact.
func (r *ReactionScript) Eval(def mgl64.Vec2, contacts int) (mgl64.Vec2, error) {
	if err := r.compiled.Set("default_x", def.X()); err != nil {
		return def, err
	}
	if err := r.compiled.Set("default_y", def.Y()); err != nil {
		return def, err
	}
	if err := r.compiled.Set("contacts", contacts); err != nil {
		return def, err
	}
	if err := r.compiled.Run(); err != nil {
		return def, fmt.Errorf("sim: run %s: %w", r.name, err)
	}
	if !r.compiled.IsDefined("vx") || !r.compiled.IsDefined("vy") {
		return def, ErrScriptOutput
	}
	return mgl64.Vec2{r.compiled.Get("vx").Float(), r.compiled.Get("vy").Float()}, nil
}

func declareInputs(script *tengo.Script, vars []scriptVar) error {
	for _, v := range vars {
		if err := script.Add(v.name, v.value); err != nil {
			return fmt.Errorf("declare %s: %w", v.name, err)
		}
	}
	return nil
}
