package compiler

import (
	"encoding/hex"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/simplify-framework/graphql/decl"
	"github.com/simplify-framework/graphql/ir"
)

const listSampleSize = 3

// sampler synthesizes DefaultSample values. All randomness is drawn from
// one seeded stream so equal seeds produce equal samples.
type sampler struct {
	types *ir.TypeTable
	src   *rand.ChaCha8
	rnd   *rand.Rand
	now   time.Time
}

func newSampler(types *ir.TypeTable, seed [32]byte, now time.Time) *sampler {
	src := rand.NewChaCha8(seed)
	return &sampler{
		types: types,
		src:   src,
		rnd:   rand.New(src),
		now:   now,
	}
}

// frame is a type being sampled. breakable marks frames entered through a
// nullable or list field, where a cycle can stop.
type frame struct {
	name      string
	breakable bool
}

func (s *sampler) fill(positions map[string]decl.Position) error {
	for _, part := range []ir.Kind{ir.KindObject, ir.KindInput} {
		for _, def := range s.types.Partition(part).Values() {
			stack := []frame{{name: def.Name}}
			for _, f := range def.Fields {
				v, err := s.sample(f.Type, stack, false)
				if err != nil {
					return &CompilationError{
						Declaration: def.Name,
						Field:       f.Name,
						Position:    positions[def.Name],
						Err:         err,
					}
				}
				f.DefaultSample = v
			}
		}
	}
	return nil
}

func (s *sampler) sample(ref *ir.TypeRef, stack []frame, inList bool) (any, error) {
	switch {
	case ref.Kind == ir.RefList:
		return s.list(ref.Elem, stack)
	case ref.Kind == ir.RefScalar, s.types.IsScalar(ref.Name):
		return s.scalar(ref.Name), nil
	}

	def, ok := s.types.Lookup(ref.Name)
	if !ok {
		return nil, wrapf(ErrUnresolvedReference, "type %q is not declared", ref.Name)
	}
	if def.Kind == ir.KindEnum {
		if len(def.Values) == 0 {
			return nil, nil
		}
		return def.Values[0], nil
	}

	breakable := inList || !ref.NonNull
	if i := onStack(stack, def.Name); i >= 0 {
		if breakable {
			return nil, nil
		}
		for _, fr := range stack[i+1:] {
			if fr.breakable {
				return nil, nil
			}
		}
		return nil, wrapf(ErrCycle, "%s references itself through non-null fields only", cyclePath(stack[i:], def.Name))
	}

	stack = append(stack[:len(stack):len(stack)], frame{name: def.Name, breakable: breakable})
	obj := make(ir.Values, 0, len(def.Fields))
	for _, f := range def.Fields {
		v, err := s.sample(f.Type, stack, false)
		if err != nil {
			return nil, err
		}
		obj = append(obj, ir.NamedValue{Name: f.Name, Value: v})
	}
	return obj, nil
}

// list samples three scalars, or a single entry of a named type. A list
// of a type already being sampled stays empty.
func (s *sampler) list(elem *ir.TypeRef, stack []frame) (any, error) {
	if elem.Kind == ir.RefScalar || (elem.Kind == ir.RefNamed && s.types.IsScalar(elem.Name)) {
		out := make([]any, listSampleSize)
		for i := range out {
			out[i] = s.scalar(elem.Name)
		}
		return out, nil
	}
	if elem.Kind == ir.RefNamed && onStack(stack, elem.Name) >= 0 {
		return []any{}, nil
	}
	v, err := s.sample(elem, stack, true)
	if err != nil {
		return nil, err
	}
	return []any{v}, nil
}

func (s *sampler) scalar(name string) any {
	switch name {
	case ir.ScalarID:
		return uuid.Must(uuid.NewRandomFromReader(s.src)).String()
	case ir.ScalarBoolean:
		return s.rnd.IntN(2) == 1
	case ir.ScalarInt:
		return int64(s.rnd.IntN(1000))
	case ir.ScalarFloat:
		return math.Floor(s.rnd.Float64()*100000) / 100
	case ir.ScalarDateTime:
		return s.now.UTC().Format(time.RFC3339)
	default:
		b := make([]byte, 8)
		_, _ = s.src.Read(b)
		return hex.EncodeToString(b)
	}
}

func onStack(stack []frame, name string) int {
	for i, fr := range stack {
		if fr.name == name {
			return i
		}
	}
	return -1
}

func cyclePath(stack []frame, back string) string {
	names := make([]string, 0, len(stack)+1)
	for _, fr := range stack {
		names = append(names, fr.name)
	}
	return strings.Join(append(names, back), " -> ")
}
