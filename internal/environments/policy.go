package environments

// VideoPolicy governs screen recording retention.
type VideoPolicy string

const (
	VideoOff             VideoPolicy = "off"
	VideoOn              VideoPolicy = "on"
	VideoRetainOnFailure VideoPolicy = "retain-on-failure"
	VideoOnFirstRetry    VideoPolicy = "on-first-retry"
)

// Valid reports whether p is one of the known video policies.
func (p VideoPolicy) Valid() bool {
	switch p {
	case VideoOff, VideoOn, VideoRetainOnFailure, VideoOnFirstRetry:
		return true
	}
	return false
}

// Keep reports whether a recording made on the given attempt (0 = first run)
// should be retained.
func (p VideoPolicy) Keep(attempt int, failed bool) bool {
	return keep(string(p), attempt, failed)
}

// ScreenshotPolicy governs when a scenario screenshot is captured.
type ScreenshotPolicy string

const (
	ScreenshotOff           ScreenshotPolicy = "off"
	ScreenshotOnlyOnFailure ScreenshotPolicy = "only-on-failure"
	ScreenshotOn            ScreenshotPolicy = "on"
)

// Valid reports whether p is one of the known screenshot policies.
func (p ScreenshotPolicy) Valid() bool {
	switch p {
	case ScreenshotOff, ScreenshotOnlyOnFailure, ScreenshotOn:
		return true
	}
	return false
}

// Keep reports whether a screenshot should be taken at the end of a scenario.
func (p ScreenshotPolicy) Keep(failed bool) bool {
	switch p {
	case ScreenshotOn:
		return true
	case ScreenshotOnlyOnFailure:
		return failed
	}
	return false
}

// TracePolicy governs action-trace recording and retention.
type TracePolicy string

const (
	TraceOff             TracePolicy = "off"
	TraceOn              TracePolicy = "on"
	TraceRetainOnFailure TracePolicy = "retain-on-failure"
	TraceOnFirstRetry    TracePolicy = "on-first-retry"
)

// Valid reports whether p is one of the known trace policies.
func (p TracePolicy) Valid() bool {
	switch p {
	case TraceOff, TraceOn, TraceRetainOnFailure, TraceOnFirstRetry:
		return true
	}
	return false
}

// Record reports whether actions must be traced on the given attempt.
func (p TracePolicy) Record(attempt int) bool {
	switch p {
	case TraceOn, TraceRetainOnFailure:
		return true
	case TraceOnFirstRetry:
		return attempt == 1
	}
	return false
}

// Keep reports whether a trace recorded on the given attempt is written out.
func (p TracePolicy) Keep(attempt int, failed bool) bool {
	return keep(string(p), attempt, failed)
}

// keep is shared by the video and trace policies, which use the same values.
func keep(policy string, attempt int, failed bool) bool {
	switch policy {
	case "on":
		return true
	case "retain-on-failure":
		return failed
	case "on-first-retry":
		return attempt == 1
	}
	return false
}
