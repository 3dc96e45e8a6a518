package countdown

// Observer receives run lifecycle callbacks. Callbacks run outside all
// countdown locks and may call back into the Countdown.
type Observer interface {
	OnStart(run *Run)
	OnTick(run *Run, value int)
	OnStop(run *Run, reason StopReason)
}

// Observe chains o after the hooks already set on c.
func (c *Config) Observe(o Observer) {
	if o == nil {
		return
	}

	if prev := c.OnStart; prev != nil {
		c.OnStart = func(r *Run) {
			prev(r)
			o.OnStart(r)
		}
	} else {
		c.OnStart = o.OnStart
	}

	if prev := c.OnTick; prev != nil {
		c.OnTick = func(r *Run, v int) {
			prev(r, v)
			o.OnTick(r, v)
		}
	} else {
		c.OnTick = o.OnTick
	}

	if prev := c.OnStop; prev != nil {
		c.OnStop = func(r *Run, reason StopReason) {
			prev(r, reason)
			o.OnStop(r, reason)
		}
	} else {
		c.OnStop = o.OnStop
	}
}
