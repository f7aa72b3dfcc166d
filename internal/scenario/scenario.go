// Package scenario loads simulation configs from Lua scripts.
//
// A script builds a scenario through the registered bindings and returns
// it:
//
//	local s = scenario.new("calibration")
//	s:players(500):matches(20000):seed(42)
//	return s
//
// Setters chain. Fields the script never touches keep the simulation
// defaults.
package scenario

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Shopify/go-lua"

	"github.com/louisbranch/ratinglab/internal/simulation"
)

const scenarioTypeName = "scenario"

// Scenario is a named simulation config assembled by a Lua script.
type Scenario struct {
	Name string

	cfg simulation.Config
}

// Config returns the simulation config with the scripted overrides applied.
func (s *Scenario) Config() simulation.Config {
	return s.cfg
}

// Load runs the Lua script at path and returns the scenario it yields.
// A scenario without a name takes the file basename.
func Load(path string) (*Scenario, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)

	registerBindings(state)

	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	return extractScenario(state, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
}

// LoadString runs src as a Lua script and returns the scenario it yields.
// name fills in when the script leaves the scenario unnamed.
func LoadString(src, name string) (*Scenario, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)

	registerBindings(state)

	if err := lua.LoadString(state, src); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	return extractScenario(state, name)
}

func extractScenario(state *lua.State, fallbackName string) (*Scenario, error) {
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}

	if state.TypeOf(-1) != lua.TypeUserData {
		state.Pop(1)
		return nil, errors.New("scenario script must return a scenario")
	}
	ud := state.ToUserData(-1)
	state.Pop(1)
	scenario, ok := ud.(*Scenario)
	if !ok || scenario == nil {
		return nil, errors.New("scenario script returned an invalid scenario")
	}
	if strings.TrimSpace(scenario.Name) == "" {
		scenario.Name = fallbackName
	}
	return scenario, nil
}

func registerBindings(state *lua.State) {
	registerScenarioType(state)
	registerScenarioConstructor(state)
}

func registerScenarioType(state *lua.State) {
	lua.NewMetaTable(state, scenarioTypeName)
	state.NewTable()
	lua.SetFunctions(state, scenarioMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)
}

func registerScenarioConstructor(state *lua.State) {
	state.NewTable()
	lua.SetFunctions(state, scenarioConstructor, 0)
	state.SetGlobal("scenario")
}

var scenarioConstructor = []lua.RegistryFunction{
	{Name: "new", Function: scenarioNew},
}

var scenarioMethods = []lua.RegistryFunction{
	{Name: "players", Function: scenarioPlayers},
	{Name: "matches", Function: scenarioMatches},
	{Name: "initial_rating", Function: scenarioInitialRating},
	{Name: "rating_range_pct", Function: scenarioRatingRangePct},
	{Name: "k_factor", Function: scenarioKFactor},
	{Name: "seed", Function: scenarioSeed},
}

func scenarioNew(state *lua.State) int {
	name := lua.OptString(state, 1, "")
	scenario := &Scenario{Name: name, cfg: simulation.DefaultConfig()}
	state.PushUserData(scenario)
	lua.SetMetaTableNamed(state, scenarioTypeName)
	return 1
}

func checkScenario(state *lua.State) *Scenario {
	ud := lua.CheckUserData(state, 1, scenarioTypeName)
	if scenario, ok := ud.(*Scenario); ok && scenario != nil {
		return scenario
	}
	lua.ArgumentError(state, 1, "scenario expected")
	return nil
}

// pushSelf leaves the receiver on the stack so setters chain.
func pushSelf(state *lua.State) int {
	state.PushValue(1)
	return 1
}

func scenarioPlayers(state *lua.State) int {
	scenario := checkScenario(state)
	count := lua.CheckInteger(state, 2)
	if count <= 0 {
		lua.ArgumentError(state, 2, "players must be positive")
	}
	scenario.cfg.NumPlayers = count
	return pushSelf(state)
}

func scenarioMatches(state *lua.State) int {
	scenario := checkScenario(state)
	count := lua.CheckInteger(state, 2)
	if count <= 0 {
		lua.ArgumentError(state, 2, "matches must be positive")
	}
	scenario.cfg.NumMatches = count
	return pushSelf(state)
}

func scenarioInitialRating(state *lua.State) int {
	scenario := checkScenario(state)
	scenario.cfg.InitialRating = lua.CheckNumber(state, 2)
	return pushSelf(state)
}

func scenarioRatingRangePct(state *lua.State) int {
	scenario := checkScenario(state)
	pct := lua.CheckNumber(state, 2)
	if pct <= 0 {
		lua.ArgumentError(state, 2, "rating_range_pct must be positive")
	}
	scenario.cfg.RatingRangePct = pct
	return pushSelf(state)
}

func scenarioKFactor(state *lua.State) int {
	scenario := checkScenario(state)
	k := lua.CheckNumber(state, 2)
	if k <= 0 {
		lua.ArgumentError(state, 2, "k_factor must be positive")
	}
	scenario.cfg.KFactor = k
	return pushSelf(state)
}

func scenarioSeed(state *lua.State) int {
	scenario := checkScenario(state)
	scenario.cfg.Seed = int64(lua.CheckNumber(state, 2))
	return pushSelf(state)
}
