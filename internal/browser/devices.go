package browser

import (
	"fmt"
	"sort"
)

// Device describes the viewport and identity a page emulates.
type Device struct {
	Name      string
	Width     int
	Height    int
	Scale     float64
	Mobile    bool
	Touch     bool
	UserAgent string
}

// DefaultDevice is used when no device is configured.
const DefaultDevice = "Desktop Chrome"

// Only Chromium-based targets are listed; CDP cannot drive Firefox or WebKit.
var devices = map[string]Device{
	"Desktop Chrome": {
		Name: "Desktop Chrome", Width: 1280, Height: 720, Scale: 1,
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	},
	"Desktop Edge": {
		Name: "Desktop Edge", Width: 1280, Height: 720, Scale: 1,
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0",
	},
	"Pixel 5": {
		Name: "Pixel 5", Width: 393, Height: 851, Scale: 2.75, Mobile: true, Touch: true,
		UserAgent: "Mozilla/5.0 (Linux; Android 11; Pixel 5) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36",
	},
	"iPhone 12": {
		Name: "iPhone 12", Width: 390, Height: 664, Scale: 3, Mobile: true, Touch: true,
		UserAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 14_2 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.0.3 Mobile/15E148 Safari/604.1",
	},
	"iPhone SE": {
		Name: "iPhone SE", Width: 375, Height: 667, Scale: 2, Mobile: true, Touch: true,
		UserAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 14_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.0.3 Mobile/15E148 Safari/604.1",
	},
}

// LookupDevice returns the named device.
func LookupDevice(name string) (Device, error) {
	d, ok := devices[name]
	if !ok {
		return Device{}, fmt.Errorf("unknown device %q (known: %v)", name, DeviceNames())
	}
	return d, nil
}

// DeviceNames lists the supported devices alphabetically.
func DeviceNames() []string {
	names := make([]string, 0, len(devices))
	for name := range devices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
