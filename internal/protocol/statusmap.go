package protocol

// Positional mapping of system-status response bytes to SystemParameters
// fields. The mapping is reverse-engineered from live captures and only
// partially verified; firmware revisions may reorder or extend it, so it
// lives in its own versioned table instead of being baked into the parser.

// StatusMapVersion identifies a positional status-byte mapping revision.
type StatusMapVersion int

const (
	// StatusMapV1 is the mapping observed on AquaClean Mera firmware.
	// Byte order follows systemStatusPoints in constructor.go; the
	// user-sitting flag is inferred from the flush status byte.
	StatusMapV1 StatusMapVersion = 1
)

// statusSetter applies one status byte to the snapshot.
type statusSetter func(p *SystemParameters, value byte)

// statusMaps holds one positional setter list per mapping revision.
var statusMaps = map[StatusMapVersion][]statusSetter{
	StatusMapV1: {
		func(p *SystemParameters, v byte) { p.AnalShowerRunning = v > 0 },
		func(p *SystemParameters, v byte) { p.LadyShowerRunning = v > 0 },
		func(p *SystemParameters, v byte) { p.DryerRunning = v > 0 },
		func(p *SystemParameters, v byte) { p.UserIsSitting = v > 0 },
		func(p *SystemParameters, v byte) { p.DescalingNeeded = v > 0 },
		func(p *SystemParameters, v byte) { p.MaintenanceNeeded = v > 0 },
	},
}

// applyStatusBytes maps up to the first len(mapping) response bytes onto
// the snapshot. Bytes beyond the mapping are out of contract and ignored;
// a short buffer fills only the positions it covers.
func applyStatusBytes(p *SystemParameters, data []byte, version StatusMapVersion) {
	mapping, ok := statusMaps[version]
	if !ok {
		mapping = statusMaps[StatusMapV1]
	}
	for i, set := range mapping {
		if i >= len(data) {
			return
		}
		set(p, data[i])
	}
}
