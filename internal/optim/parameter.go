package optim

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/san-kum/pysic/internal/config"
	"github.com/san-kum/pysic/internal/core"
)

// Set assigns value to a named configuration parameter:
//
//	a, temperature, dt            structure and md settings
//	<kind>.<param>                every potential of that kind, e.g. LJ.sigma
//	<kind>.cutoff                 cutoff of every potential of that kind
//	coulomb.<param>               e.g. coulomb.real_cutoff
//	relaxation.<param>            e.g. relaxation.timestep
func Set(cfg *config.Config, name string, value float64) error {
	switch name {
	case "a":
		cfg.Structure.A = value
		return nil
	case "temperature":
		cfg.Structure.Temperature = value
		return nil
	case "dt":
		cfg.MD.Dt = value
		return nil
	}

	group, param, ok := strings.Cut(name, ".")
	if !ok {
		return fmt.Errorf("unknown parameter %q", name)
	}
	switch group {
	case "coulomb":
		if cfg.Coulomb == nil {
			return fmt.Errorf("%s: config has no coulomb summation", name)
		}
		d, err := core.CoulombMethod(cfg.Coulomb.Method)
		if err != nil {
			return err
		}
		return setIndexed(cfg.Coulomb.Parameters, d.Parameters, name, param, value)
	case "relaxation":
		if cfg.Relaxation == nil {
			return fmt.Errorf("%s: config has no charge relaxation", name)
		}
		d, err := core.ChargeRelaxationMethod(cfg.Relaxation.Method)
		if err != nil {
			return err
		}
		return setIndexed(cfg.Relaxation.Parameters, d.Parameters, name, param, value)
	}

	d, err := core.Potential(group)
	if err != nil {
		return err
	}
	found := false
	for i := range cfg.Potentials {
		p := &cfg.Potentials[i]
		if p.Kind != group {
			continue
		}
		found = true
		if param == "cutoff" {
			p.Cutoff = value
			continue
		}
		if err := setIndexed(p.Parameters, d.Parameters, name, param, value); err != nil {
			return err
		}
	}
	if !found {
		return fmt.Errorf("%s: config has no %s potential", name, group)
	}
	return nil
}

func setIndexed(values []float64, names []string, full, param string, value float64) error {
	for i, n := range names {
		if n != param {
			continue
		}
		if i >= len(values) {
			return fmt.Errorf("%s: only %d parameters are set", full, len(values))
		}
		values[i] = value
		return nil
	}
	return fmt.Errorf("%s: unknown parameter %q, want one of %v", full, param, names)
}

// ParseRange reads "name=from:to:n" into n evenly spaced values, or
// "name=v1,v2,..." into an explicit list.
func ParseRange(s string) (string, []float64, error) {
	name, spec, ok := strings.Cut(s, "=")
	if !ok || name == "" || spec == "" {
		return "", nil, fmt.Errorf("range %q is not name=from:to:n or name=v1,v2", s)
	}

	if parts := strings.Split(spec, ":"); len(parts) == 3 {
		from, err1 := strconv.ParseFloat(parts[0], 64)
		to, err2 := strconv.ParseFloat(parts[1], 64)
		n, err3 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || err3 != nil || n < 1 {
			return "", nil, fmt.Errorf("range %q: bad from:to:n", s)
		}
		return name, Linspace(from, to, n), nil
	}

	var values []float64
	for _, f := range strings.Split(spec, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return "", nil, fmt.Errorf("range %q: %w", s, err)
		}
		values = append(values, v)
	}
	return name, values, nil
}

func Linspace(from, to float64, n int) []float64 {
	if n == 1 {
		return []float64{from}
	}
	out := make([]float64, n)
	step := (to - from) / float64(n-1)
	for i := range out {
		out[i] = from + float64(i)*step
	}
	return out
}
