package mcp

// EmptyInput is the input for tools that take no arguments.
type EmptyInput struct{}

// BlurStatusOutput is the output for toggle_blur, show_blur, hide_blur and
// blur_status.
type BlurStatusOutput struct {
	Active        bool     `json:"active"`
	Transitioning bool     `json:"transitioning"`
	Surfaces      []string `json:"surfaces"`
	Hotkey        string   `json:"hotkey"`
	HotkeyLive    bool     `json:"hotkey_live"`
	Selection     string   `json:"selection"`
	Degraded      bool     `json:"degraded"`
	Warnings      []string `json:"warnings,omitempty"`
}

// MonitorInfo describes one attached display.
type MonitorInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Selected bool   `json:"selected"`
}

// ListMonitorsOutput is the output for the list_monitors tool.
type ListMonitorsOutput struct {
	All      bool          `json:"all"`
	Selected []string      `json:"selected"`
	Monitors []MonitorInfo `json:"monitors"`
}

// SelectMonitorsInput is the input for the select_monitors tool.
type SelectMonitorsInput struct {
	All bool     `json:"all,omitempty" jsonschema:"When true, blur every display including ones attached later. Overrides ids."`
	IDs []string `json:"ids,omitempty" jsonschema:"Display IDs to blur (see list_monitors). An empty list blurs nothing."`
}

// SetHotkeyInput is the input for the set_hotkey tool.
type SetHotkeyInput struct {
	Hotkey string `json:"hotkey" jsonschema:"required,Shortcut such as Mod4-shift-b or ctrl+alt+F5. Needs at least one modifier."`
}

// SetHotkeyOutput is the output for the set_hotkey tool.
type SetHotkeyOutput struct {
	Hotkey  string `json:"hotkey"`
	Display string `json:"display"`
}
