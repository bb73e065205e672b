package atmosphere

import "fmt"

// Gradient computes the vertical gradient of a profile over its scan levels.
//
// Scheme "backward" uses first-order backward differences with the lowest
// level set to zero. Scheme "uneven" uses the centred scheme for non-uniform
// spacing after Sundqvist and Veronis (1970), with the same lower boundary
// and a backward difference at the top.
func (c *Constructor) Gradient(p *Profile, scheme string) (*Profile, error) {
	switch scheme {
	case "backward":
		return backwardDifferencing(p), nil
	case "uneven":
		return nonUniformDifferencing(p), nil
	default:
		return nil, fmt.Errorf(
			"'%s' is not an implemented differencing scheme. Use 'uneven' or 'backward'.", scheme)
	}
}

func backwardDifferencing(p *Profile) *Profile {
	out := p.Clone()
	for i, row := range p.Values {
		out.Values[i][0] = 0
		for j := 1; j < len(p.Levels); j++ {
			dz := float64(p.Levels[j] - p.Levels[j-1])
			out.Values[i][j] = (row[j] - row[j-1]) / dz
		}
	}
	return out
}

func nonUniformDifferencing(p *Profile) *Profile {
	out := p.Clone()
	n := len(p.Levels)
	for i, row := range p.Values {
		out.Values[i][0] = 0
		for j := 1; j < n-1; j++ {
			dzDown := float64(p.Levels[j] - p.Levels[j-1])
			dzUp := float64(p.Levels[j+1] - p.Levels[j])
			// Weighted centred difference for uneven spacing.
			out.Values[i][j] = (dzDown*dzDown*row[j+1] - dzUp*dzUp*row[j-1] -
				(dzDown*dzDown-dzUp*dzUp)*row[j]) /
				(dzDown * dzUp * (dzDown + dzUp))
		}
		if n > 1 {
			dz := float64(p.Levels[n-1] - p.Levels[n-2])
			out.Values[i][n-1] = (row[n-1] - row[n-2]) / dz
		}
	}
	return out
}
