// Package menu is the interactive front end: a finite-state machine whose
// transitions are pure, and a loop that feeds it console input.
package menu

import (
	"fmt"
	"strconv"
	"strings"
)

// State is the menu currently shown.
type State int

const (
	MainMenu State = iota
	PerformanceMenu
	SecurityMenu
	SettingsMenu
	Exit
)

func (s State) String() string {
	switch s {
	case MainMenu:
		return "main"
	case PerformanceMenu:
		return "performance"
	case SecurityMenu:
		return "security"
	case SettingsMenu:
		return "settings"
	case Exit:
		return "exit"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Action is what a transition asks the executor to do. Action names double
// as script table keys where a script exists.
type Action string

const (
	None    Action = ""
	Invalid Action = "invalid"

	Cleanup     Action = "cleanup"
	Drivers     Action = "drivers"
	Updates     Action = "updates"
	Performance Action = "performance"
	Disk        Action = "disk"
	Power       Action = "power"

	Threats     Action = "threats"
	Hardening   Action = "security"
	Credentials Action = "credentials"
	Network     Action = "network"
	Phishing    Action = "phishing"
	Ethical     Action = "ethical"

	RunAll Action = "run-all"

	ToggleAutoUpdate Action = "toggle-auto-update"
	CycleLogLevel    Action = "cycle-log-level"
	ShowSettings     Action = "show-settings"
)

// RunAllPerformance and RunAllSecurity are the actions Run All executes, in order.
var (
	RunAllPerformance = []Action{Cleanup, Drivers, Updates}
	RunAllSecurity    = []Action{Threats, Hardening, Network}
)

type item struct {
	label  string
	action Action
}

type screen struct {
	title string
	items []item
	// back is the option that returns to the main menu, 0 if none.
	back int
}

var screens = map[State]screen{
	MainMenu: {
		title: "CYBER USB TOOLKIT",
		items: []item{
			{"System Performance", None},
			{"System Security", None},
			{"Run All Functions", RunAll},
			{"Settings", None},
			{"Exit", None},
		},
	},
	PerformanceMenu: {
		title: "SYSTEM PERFORMANCE OPTIMIZATION",
		items: []item{
			{"System Cleanup", Cleanup},
			{"Driver Management", Drivers},
			{"Windows Update & Repair", Updates},
			{"Performance Boost", Performance},
			{"Disk Management", Disk},
			{"Battery & Power Optimization", Power},
			{"Back to Main Menu", None},
		},
		back: 7,
	},
	SecurityMenu: {
		title: "SYSTEM SECURITY",
		items: []item{
			{"Threat Detection", Threats},
			{"System Hardening", Hardening},
			{"Password & Credential Audit", Credentials},
			{"Network & Port Security", Network},
			{"Phishing Defense & Awareness", Phishing},
			{"Ethical Hacking Tools", Ethical},
			{"Back to Main Menu", None},
		},
		back: 7,
	},
	SettingsMenu: {
		title: "SETTINGS",
		items: []item{
			{"Toggle Auto Update", ToggleAutoUpdate},
			{"Change Log Level", CycleLogLevel},
			{"Show Current Settings", ShowSettings},
			{"Back to Main Menu", None},
		},
		back: 4,
	},
}

// Transition maps (state, input) to the next state and the action to run.
// Unknown input leaves the state unchanged and yields Invalid.
func Transition(s State, input string) (State, Action) {
	input = strings.TrimSpace(input)

	switch s {
	case MainMenu:
		switch input {
		case "1":
			return PerformanceMenu, None
		case "2":
			return SecurityMenu, None
		case "3":
			return MainMenu, RunAll
		case "4":
			return SettingsMenu, None
		case "5":
			return Exit, None
		}
		return MainMenu, Invalid

	case PerformanceMenu, SecurityMenu, SettingsMenu:
		sc := screens[s]
		n, err := strconv.Atoi(input)
		if err != nil || n < 1 || n > len(sc.items) {
			return s, Invalid
		}
		if n == sc.back {
			return MainMenu, None
		}
		if s == SettingsMenu {
			return SettingsMenu, sc.items[n-1].action
		}
		return MainMenu, sc.items[n-1].action
	}
	return s, None
}

// Options returns how many choices the state offers.
func Options(s State) int {
	return len(screens[s].items)
}

// Render draws the menu for s. distro is shown on the main menu.
func Render(s State, distro string) string {
	sc, ok := screens[s]
	if !ok {
		return ""
	}
	line := strings.Repeat("=", 50)
	var sb strings.Builder
	sb.WriteString("\n" + line + "\n")
	sb.WriteString(fmt.Sprintf("%*s\n", (50+len(sc.title))/2, sc.title))
	sb.WriteString(line + "\n")
	if s == MainMenu {
		sb.WriteString(fmt.Sprintf("Detected OS: %s\n\nMain Menu:\n", strings.ToUpper(distro)))
	}
	for i, it := range sc.items {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, it.label))
	}
	sb.WriteString(line + "\n")
	return sb.String()
}
