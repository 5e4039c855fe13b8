package app

import "time"

// MinPingInterval bounds how fast the pinger may tick.
const MinPingInterval = 10 * time.Millisecond
