package fingerprint

import (
	"encoding/json"
	"fmt"
)

// NavigatorOverrides holds the values the masking script reports for
// JavaScript-observable navigator properties.
type NavigatorOverrides struct {
	Platform            string
	Vendor              string
	Languages           []string
	HardwareConcurrency int
	DeviceMemory        int
}

// Script renders the navigator masking script. It must be installed with
// EvalOnNewDocument so it runs before any page script: overrides applied
// after load are useless because detection scripts run at parse time.
//
// What it masks:
//   - navigator.webdriver reports unset (the primary automation marker)
//   - plugins, languages, platform, vendor, hardwareConcurrency,
//     deviceMemory, maxTouchPoints and connection report plausible
//     non-default values
//   - several fingerprinting-adjacent APIs report as absent
func (o NavigatorOverrides) Script() string {
	languages, _ := json.Marshal(o.Languages)

	return fmt.Sprintf(`(() => {
	const define = (name, value) => {
		try {
			Object.defineProperty(navigator, name, { get: () => value });
		} catch (e) {}
	};

	define('webdriver', undefined);
	define('plugins', [
		{ name: 'Chrome PDF Plugin', filename: 'internal-pdf-viewer' },
		{ name: 'Chrome PDF Viewer', filename: 'mhjfbmdgcfjbbpaeojofohoefgiehjai' },
		{ name: 'Native Client', filename: 'internal-nacl-plugin' }
	]);
	define('languages', %s);
	define('platform', %q);
	define('vendor', %q);
	define('hardwareConcurrency', %d);
	define('deviceMemory', %d);
	define('maxTouchPoints', 0);
	define('connection', {
		effectiveType: '4g',
		rtt: 50,
		downlink: 10,
		saveData: false
	});

	for (const api of ['getBattery', 'getGamepads', 'getVRDisplays',
		'mediaDevices', 'permissions', 'serviceWorker', 'storage',
		'usb', 'xr']) {
		define(api, undefined);
	}
})();`, languages, o.Platform, o.Vendor, o.HardwareConcurrency, o.DeviceMemory)
}
