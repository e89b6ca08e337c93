package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Key: board name (the platform package picks it per build target)
// Val: JSON overlay on top of Default()
// -----------------------------------------------------------------------------

const cfgPico = `{
  "screen": {
    "columns": 104,
    "rows": 212,
    "margin": 5
  },
  "min_refresh_s": 180,
  "collect_deadline_s": 20,
  "dwell_s": 20,
  "heartbeat": {
    "interval": 60
  }
}`

const cfgPico2 = `{
  "min_refresh_s": 180,
  "collect_deadline_s": 20,
  "dwell_s": 20,
  "reset_every_cycle": false
}`

// The simulator runs on compressed time so a cycle is observable in seconds.
const cfgSim = `{
  "min_refresh_s": 12,
  "collect_deadline_s": 6,
  "dwell_s": 2,
  "env_first_data_delay_ms": 100,
  "pm_frame_delay_ms": 50,
  "reset_pulse_ms": 20,
  "heartbeat": {
    "interval": 5
  }
}`

var embeddedConfigs = map[string][]byte{
	"pico":  []byte(cfgPico),
	"pico2": []byte(cfgPico2),
	"sim":   []byte(cfgSim),
}
