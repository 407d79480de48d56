package storage

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/san-kum/pysic/internal/geometry"
	"github.com/san-kum/pysic/internal/md"
)

// Frame is one snapshot of an extended XYZ trajectory.
type Frame struct {
	Time       float64
	Symbols    []string
	Positions  []geometry.Vec3
	Velocities []geometry.Vec3
	Cell       geometry.Cell
}

const xyzProperties = "species:S:1:pos:R:3:velo:R:3"

// WriteTrajectory writes md states (positions then velocities) as extended
// XYZ. Symbols and the cell are taken from atoms.
func WriteTrajectory(w io.Writer, atoms *geometry.Atoms, states []md.State, times []float64) error {
	bw := bufio.NewWriter(w)
	n := atoms.Len()
	for k, x := range states {
		if len(x) != 6*n {
			return fmt.Errorf("frame %d has dimension %d, want %d", k, len(x), 6*n)
		}
		t := 0.0
		if k < len(times) {
			t = times[k]
		}
		fmt.Fprintf(bw, "%d\n%s Time=%.6f\n", n, cellHeader(atoms.Cell), t)
		for i, sym := range atoms.Symbols {
			p, v := x.Position(i), x.Velocity(i)
			fmt.Fprintf(bw, "%-2s %14.8f %14.8f %14.8f %14.8f %14.8f %14.8f\n",
				sym, p[0], p[1], p[2], v[0], v[1], v[2])
		}
	}
	return bw.Flush()
}

func cellHeader(c geometry.Cell) string {
	var b strings.Builder
	if c.Volume() > 0 {
		b.WriteString(`Lattice="`)
		for i, v := range c.Vectors {
			if i > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%.8f %.8f %.8f", v[0], v[1], v[2])
		}
		b.WriteString(`" `)
	}
	b.WriteString("Properties=" + xyzProperties)
	b.WriteString(` pbc="`)
	for i, p := range c.PBC {
		if i > 0 {
			b.WriteByte(' ')
		}
		if p {
			b.WriteByte('T')
		} else {
			b.WriteByte('F')
		}
	}
	b.WriteByte('"')
	return b.String()
}

// ReadTrajectory parses what WriteTrajectory produces.
func ReadTrajectory(r io.Reader) ([]Frame, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	next := func() (string, bool) {
		if !sc.Scan() {
			return "", false
		}
		line++
		return sc.Text(), true
	}

	var frames []Frame
	for {
		head, ok := next()
		if !ok {
			break
		}
		if strings.TrimSpace(head) == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(head))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("line %d: bad atom count %q", line, head)
		}
		comment, ok := next()
		if !ok {
			return nil, fmt.Errorf("line %d: missing comment line", line)
		}
		frame, err := parseComment(comment)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		frame.Symbols = make([]string, n)
		frame.Positions = make([]geometry.Vec3, n)
		frame.Velocities = make([]geometry.Vec3, n)
		for i := 0; i < n; i++ {
			text, ok := next()
			if !ok {
				return nil, fmt.Errorf("line %d: frame truncated after %d of %d atoms", line, i, n)
			}
			fields := strings.Fields(text)
			if len(fields) != 7 {
				return nil, fmt.Errorf("line %d: expected 7 columns, got %d", line, len(fields))
			}
			frame.Symbols[i] = fields[0]
			var vals [6]float64
			for j := range vals {
				if vals[j], err = strconv.ParseFloat(fields[j+1], 64); err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}
			}
			frame.Positions[i] = geometry.Vec3{vals[0], vals[1], vals[2]}
			frame.Velocities[i] = geometry.Vec3{vals[3], vals[4], vals[5]}
		}
		frames = append(frames, frame)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return frames, nil
}

func parseComment(s string) (Frame, error) {
	var f Frame
	for key, val := range commentFields(s) {
		switch key {
		case "Time":
			t, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return f, fmt.Errorf("bad Time %q", val)
			}
			f.Time = t
		case "Lattice":
			nums := strings.Fields(val)
			if len(nums) != 9 {
				return f, fmt.Errorf("lattice needs 9 numbers, got %d", len(nums))
			}
			for i, num := range nums {
				v, err := strconv.ParseFloat(num, 64)
				if err != nil {
					return f, fmt.Errorf("bad lattice entry %q", num)
				}
				f.Cell.Vectors[i/3][i%3] = v
			}
		case "pbc":
			flags := strings.Fields(val)
			if len(flags) != 3 {
				return f, fmt.Errorf("pbc needs 3 flags, got %q", val)
			}
			for i, flag := range flags {
				f.Cell.PBC[i] = flag == "T"
			}
		case "Properties":
			if val != xyzProperties {
				return f, fmt.Errorf("unsupported properties %q", val)
			}
		}
	}
	return f, nil
}

// commentFields splits key=value pairs where values may be double quoted.
func commentFields(s string) map[string]string {
	out := make(map[string]string)
	for s = strings.TrimSpace(s); s != ""; s = strings.TrimSpace(s) {
		eq := strings.IndexByte(s, '=')
		if eq < 0 {
			break
		}
		key := s[:eq]
		s = s[eq+1:]
		var val string
		if strings.HasPrefix(s, `"`) {
			end := strings.IndexByte(s[1:], '"')
			if end < 0 {
				val, s = s[1:], ""
			} else {
				val, s = s[1:end+1], s[end+2:]
			}
		} else if sp := strings.IndexByte(s, ' '); sp >= 0 {
			val, s = s[:sp], s[sp:]
		} else {
			val, s = s, ""
		}
		out[key] = val
	}
	return out
}
