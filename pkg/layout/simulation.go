package layout

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/barneshut"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/Dicklesworthstone/coauthor_viewer/pkg/model"
)

// body is one simulated node. It is a barneshut.Particle2 of unit mass.
type body struct {
	id     model.PersonID
	x, y   float64
	vx, vy float64
}

func (b *body) Coord2() r2.Vec { return r2.Vec{X: b.x, Y: b.y} }
func (b *body) Mass() float64  { return 1 }

type spring struct {
	source, target *body
	distance       float64
	strength       float64
	bias           float64
}

// Simulation is a velocity-Verlet style force simulation with many-body
// repulsion, spring links and a centering force. It is not safe for
// concurrent use; a run owns it exclusively.
type Simulation struct {
	cfg     Config
	bodies  []*body
	springs []spring
	cx, cy  float64
	alpha   float64
	rng     *rand.Rand

	particles []barneshut.Particle2
	plane     *barneshut.Plane
	repel     barneshut.Force2
}

// initialAngle is the golden angle used to spread unplaced nodes.
var initialAngle = math.Pi * (3 - math.Sqrt(5))

const initialRadius = 10

// NewSimulation prepares a simulation for req. Links naming unknown nodes
// are dropped.
func NewSimulation(req Request, cfg Config) *Simulation {
	cfg = cfg.withDefaults()
	s := &Simulation{
		cfg:   cfg,
		cx:    req.GraphWidth / 2,
		cy:    req.GraphHeight / 2,
		alpha: 1,
		rng:   rand.New(rand.NewSource(cfg.Seed)),
	}

	byID := make(map[model.PersonID]*body, len(req.Nodes))
	s.bodies = make([]*body, 0, len(req.Nodes))
	s.particles = make([]barneshut.Particle2, 0, len(req.Nodes))
	for i, n := range req.Nodes {
		b := &body{id: n.ID, x: n.X, y: n.Y}
		if n.X == 0 && n.Y == 0 {
			radius := initialRadius * math.Sqrt(0.5+float64(i))
			angle := float64(i) * initialAngle
			b.x = s.cx + radius*math.Cos(angle)
			b.y = s.cy + radius*math.Sin(angle)
		}
		byID[n.ID] = b
		s.bodies = append(s.bodies, b)
		s.particles = append(s.particles, b)
	}

	degree := make(map[*body]int, len(s.bodies))
	for _, l := range req.Links {
		src, dst := byID[l.Source], byID[l.Target]
		if src == nil || dst == nil || src == dst {
			continue
		}
		degree[src]++
		degree[dst]++
		s.springs = append(s.springs, spring{source: src, target: dst, distance: s.linkDistance(l.Weight)})
	}
	for i := range s.springs {
		sp := &s.springs[i]
		ds, dt := float64(degree[sp.source]), float64(degree[sp.target])
		sp.strength = 1 / math.Min(ds, dt)
		sp.bias = ds / (ds + dt)
	}

	strength, distMin2 := cfg.ManyBodyStrength, cfg.DistanceMin*cfg.DistanceMin
	s.repel = func(_, _ barneshut.Particle2, _, m2 float64, v r2.Vec) r2.Vec {
		l := v.X*v.X + v.Y*v.Y
		if l == 0 {
			return r2.Vec{}
		}
		if l < distMin2 {
			l = math.Sqrt(distMin2 * l)
		}
		return r2.Scale(strength*m2/l, v)
	}
	return s
}

func (s *Simulation) linkDistance(weight int) float64 {
	if !s.cfg.WeightedLinks || weight <= 1 {
		return s.cfg.LinkDistance
	}
	return s.cfg.LinkDistance / (1 + math.Log(float64(weight)))
}

// Alpha returns the current cooling parameter.
func (s *Simulation) Alpha() float64 { return s.alpha }

// Tick advances the simulation by one step.
func (s *Simulation) Tick() {
	s.alpha += (0 - s.alpha) * s.cfg.AlphaDecay

	s.applyLinks()
	s.applyManyBody()
	s.applyCenter()

	keep := 1 - s.cfg.VelocityDecay
	for _, b := range s.bodies {
		b.vx *= keep
		b.vy *= keep
		b.x += b.vx
		b.y += b.vy
	}
}

func (s *Simulation) applyLinks() {
	for _, sp := range s.springs {
		x := sp.target.x + sp.target.vx - sp.source.x - sp.source.vx
		y := sp.target.y + sp.target.vy - sp.source.y - sp.source.vy
		if x == 0 {
			x = s.jiggle()
		}
		if y == 0 {
			y = s.jiggle()
		}
		l := math.Sqrt(x*x + y*y)
		l = (l - sp.distance) / l * s.alpha * sp.strength
		x *= l
		y *= l
		sp.target.vx -= x * sp.bias
		sp.target.vy -= y * sp.bias
		sp.source.vx += x * (1 - sp.bias)
		sp.source.vy += y * (1 - sp.bias)
	}
}

func (s *Simulation) applyManyBody() {
	if len(s.bodies) < 2 {
		return
	}
	s.separateCoincident()

	var err error
	if s.plane == nil {
		s.plane, err = barneshut.NewPlane(s.particles)
	} else {
		err = s.plane.Reset()
	}
	if err != nil {
		// The tree cannot resolve these coordinates; fall back to the exact sum.
		s.plane = nil
		s.applyManyBodyExact()
		return
	}

	for _, b := range s.bodies {
		f := s.plane.ForceOn(b, s.cfg.Theta, s.repel)
		b.vx += f.X * s.alpha
		b.vy += f.Y * s.alpha
	}
}

func (s *Simulation) applyManyBodyExact() {
	for _, b := range s.bodies {
		var f r2.Vec
		for _, o := range s.bodies {
			if o == b {
				continue
			}
			f = r2.Add(f, s.repel(b, o, 1, 1, r2.Sub(o.Coord2(), b.Coord2())))
		}
		b.vx += f.X * s.alpha
		b.vy += f.Y * s.alpha
	}
}

// separateCoincident nudges bodies that share a position so the quadtree can
// tell them apart.
func (s *Simulation) separateCoincident() {
	seen := make(map[r2.Vec]struct{}, len(s.bodies))
	for _, b := range s.bodies {
		for {
			p := b.Coord2()
			if _, dup := seen[p]; !dup {
				seen[p] = struct{}{}
				break
			}
			b.x += s.jiggle()
			b.y += s.jiggle()
		}
	}
}

func (s *Simulation) applyCenter() {
	if len(s.bodies) == 0 {
		return
	}
	var sx, sy float64
	for _, b := range s.bodies {
		sx += b.x
		sy += b.y
	}
	n := float64(len(s.bodies))
	dx := (s.cx - sx/n) * s.cfg.CenterStrength
	dy := (s.cy - sy/n) * s.cfg.CenterStrength
	for _, b := range s.bodies {
		b.x += dx
		b.y += dy
	}
}

func (s *Simulation) jiggle() float64 {
	return (s.rng.Float64() - 0.5) * 1e-6
}

// Positions returns the current position of every node, in request order.
func (s *Simulation) Positions() []NodeData {
	out := make([]NodeData, len(s.bodies))
	for i, b := range s.bodies {
		out[i] = NodeData{ID: b.id, X: b.x, Y: b.y}
	}
	return out
}
