package formats

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/jointmorph/internal/logger"
	"github.com/Faultbox/jointmorph/pkg/anim"
	"github.com/Faultbox/jointmorph/pkg/math"
	"github.com/Faultbox/jointmorph/pkg/model"
)

// glTF import errors.
var (
	ErrBadAccessor = errors.New("unsupported accessor")
)

// DecodeGLTF reads a self-contained glTF document (embedded or data URI
// buffers) from r and imports it.
func DecodeGLTF(r io.Reader, fps float32) (*Bundle, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return nil, errors.Wrap(err, "decoding gltf")
	}
	return ImportGLTF(doc, fps)
}

// ImportGLTF converts the first skin of doc into model joints and every
// animation into a joint clip. Without a skin every node becomes a joint.
// Key times in seconds are converted to frames at fps.
func ImportGLTF(doc *gltf.Document, fps float32) (*Bundle, error) {
	if fps <= 0 {
		return nil, errors.Errorf("invalid fps %v", fps)
	}

	name := "gltf"
	var nodes []int
	if len(doc.Skins) > 0 {
		skin := doc.Skins[0]
		if skin.Name != "" {
			name = skin.Name
		}
		for _, j := range skin.Joints {
			nodes = append(nodes, int(j))
		}
	} else {
		for i := range doc.Nodes {
			nodes = append(nodes, i)
		}
	}
	if len(nodes) == 0 {
		return nil, errors.Wrap(model.ErrNoJoints, "gltf")
	}

	nodes, parents, err := orderJoints(doc, nodes)
	if err != nil {
		return nil, err
	}

	md := &model.ModelData{
		Name:       name,
		ShapeCount: len(doc.Meshes),
		Joints:     make([]model.Joint, len(nodes)),
	}
	for _, m := range doc.Materials {
		md.Materials = append(md.Materials, model.MaterialData{Name: m.Name, TexMtxCount: 1, TexMapCount: 1})
	}

	jointOf := make(map[int]int, len(nodes))
	for i, ni := range nodes {
		jointOf[ni] = i
		node := doc.Nodes[ni]
		jname := node.Name
		if jname == "" {
			jname = fmt.Sprintf("node%d", ni)
		}
		md.Joints[i] = model.Joint{
			Name:      jname,
			Parent:    parents[i],
			Transform: nodeTransform(node),
		}
	}
	if err := md.Validate(); err != nil {
		return nil, err
	}

	b := &Bundle{Model: md}
	for ai, a := range doc.Animations {
		clip, err := importAnimation(doc, a, ai, jointOf, md, fps)
		if err != nil {
			return nil, errors.Wrapf(err, "animation %d", ai)
		}
		if err := b.addClip(clip); err != nil {
			return nil, err
		}
		logger.Debug("gltf animation imported",
			zap.String("model", md.Name),
			zap.String("clip", clip.Name),
			zap.Float32("duration", clip.Duration))
	}
	return b, nil
}

// orderJoints sorts joint nodes so every parent precedes its children and
// returns each joint's parent index, -1 for roots. The parent is the closest
// ancestor node that is itself a joint.
func orderJoints(doc *gltf.Document, nodes []int) ([]int, []int, error) {
	nodeParent := make(map[int]int, len(doc.Nodes))
	for pi, n := range doc.Nodes {
		for _, c := range n.Children {
			nodeParent[int(c)] = pi
		}
	}

	isJoint := make(map[int]bool, len(nodes))
	for _, n := range nodes {
		if n < 0 || n >= len(doc.Nodes) {
			return nil, nil, errors.Errorf("joint node %d out of range", n)
		}
		isJoint[n] = true
	}

	jointParent := func(n int) int {
		for steps := 0; steps <= len(doc.Nodes); steps++ {
			p, ok := nodeParent[n]
			if !ok {
				return -1
			}
			if isJoint[p] {
				return p
			}
			n = p
		}
		return -1
	}

	depth := make(map[int]int, len(nodes))
	for _, n := range nodes {
		d := 0
		for p := jointParent(n); p >= 0 && d <= len(nodes); p = jointParent(p) {
			d++
		}
		if d > len(nodes) {
			return nil, nil, errors.Wrapf(model.ErrInvalidJointParent, "node %d is in a cycle", n)
		}
		depth[n] = d
	}

	ordered := append([]int(nil), nodes...)
	sort.SliceStable(ordered, func(i, j int) bool { return depth[ordered[i]] < depth[ordered[j]] })

	index := make(map[int]int, len(ordered))
	for i, n := range ordered {
		index[n] = i
	}
	parents := make([]int, len(ordered))
	for i, n := range ordered {
		parents[i] = -1
		if p := jointParent(n); p >= 0 {
			parents[i] = index[p]
		}
	}
	return ordered, parents, nil
}

// nodeTransform returns the node's local TRS. Nodes that only carry a matrix
// are decomposed.
func nodeTransform(node *gltf.Node) math.Transform {
	m := mgl32.Mat4(node.Matrix)
	if m != (mgl32.Mat4{}) && m != mgl32.Ident4() {
		return decompose(m)
	}

	xf := math.Transform{
		Scale:       mgl32.Vec3(node.Scale),
		Rotation:    math.EulerFromQuat(quat(node.Rotation)),
		Translation: mgl32.Vec3(node.Translation),
	}
	if xf.Scale == (mgl32.Vec3{}) {
		xf.Scale = math.One
	}
	return xf
}

func decompose(m mgl32.Mat4) math.Transform {
	scale := mgl32.Vec3{m.Col(0).Vec3().Len(), m.Col(1).Vec3().Len(), m.Col(2).Vec3().Len()}
	rot := mgl32.Ident4()
	for c := 0; c < 3; c++ {
		if scale[c] == 0 {
			continue
		}
		col := m.Col(c).Vec3().Mul(1 / scale[c])
		rot.SetCol(c, col.Vec4(0))
	}
	return math.Transform{
		Scale:       scale,
		Rotation:    math.EulerFromQuat(mgl32.Mat4ToQuat(rot)),
		Translation: m.Col(3).Vec3(),
	}
}

// quat converts a glTF (x, y, z, w) rotation. The zero value is identity.
func quat(r [4]float32) mgl32.Quat {
	if r == ([4]float32{}) {
		return mgl32.QuatIdent()
	}
	return mgl32.Quat{W: r[3], V: mgl32.Vec3{r[0], r[1], r[2]}}
}

// index resolves a glTF index field. Optional indices are pointers.
func index(v any) (int, bool) {
	switch i := v.(type) {
	case uint32:
		return int(i), true
	case *uint32:
		if i == nil {
			return 0, false
		}
		return int(*i), true
	default:
		return 0, false
	}
}

func readAccessor(doc *gltf.Document, ref any) (any, error) {
	i, ok := index(ref)
	if !ok || i >= len(doc.Accessors) {
		return nil, errors.Wrapf(ErrBadAccessor, "missing accessor %v", ref)
	}
	data, err := modeler.ReadAccessor(doc, doc.Accessors[i], nil)
	if err != nil {
		return nil, errors.Wrapf(err, "reading accessor %d", i)
	}
	return data, nil
}

func importAnimation(doc *gltf.Document, a *gltf.Animation, ai int, jointOf map[int]int, md *model.ModelData, fps float32) (*anim.JointClip, error) {
	name := a.Name
	if name == "" {
		name = fmt.Sprintf("animation%d", ai)
	}
	clip := &anim.JointClip{
		ClipHeader: anim.ClipHeader{Name: name, LoopMode: anim.LoopRepeat},
		Joints:     make([]anim.JointTrack, len(md.Joints)),
	}
	for i := range clip.Joints {
		clip.Joints[i] = restTracks(md.Joints[i].Transform)
	}

	for ci, ch := range a.Channels {
		node, ok := index(ch.Target.Node)
		if !ok {
			continue
		}
		ji, ok := jointOf[node]
		if !ok {
			logger.Debug("skipping channel on non-joint node", zap.String("clip", name), zap.Int("node", node))
			continue
		}
		si, ok := index(ch.Sampler)
		if !ok || si >= len(a.Samplers) {
			return nil, errors.Errorf("channel %d: missing sampler", ci)
		}
		sampler := a.Samplers[si]

		rawIn, err := readAccessor(doc, sampler.Input)
		if err != nil {
			return nil, err
		}
		times, ok := rawIn.([]float32)
		if !ok {
			return nil, errors.Wrapf(ErrBadAccessor, "channel %d: input is %T", ci, rawIn)
		}
		rawOut, err := readAccessor(doc, sampler.Output)
		if err != nil {
			return nil, err
		}

		interp := anim.InterpLinear
		if sampler.Interpolation == gltf.InterpolationStep {
			interp = anim.InterpStep
		}
		// Cubic spline outputs hold in-tangent, value, out-tangent per key.
		stride, offset := 1, 0
		if sampler.Interpolation == gltf.InterpolationCubicSpline {
			stride, offset = 3, 1
		}

		jt := &clip.Joints[ji]
		switch ch.Target.Path {
		case gltf.TRSTranslation, gltf.TRSScale:
			values, ok := rawOut.([][3]float32)
			if !ok || len(values) < len(times)*stride {
				return nil, errors.Wrapf(ErrBadAccessor, "channel %d: output is %T", ci, rawOut)
			}
			dst := &jt.Translation
			if ch.Target.Path == gltf.TRSScale {
				dst = &jt.Scale
			}
			for c := 0; c < 3; c++ {
				dst[c] = buildTrack(times, fps, interp, func(k int) float32 { return values[k*stride+offset][c] })
			}

		case gltf.TRSRotation:
			values, ok := rawOut.([][4]float32)
			if !ok || len(values) < len(times)*stride {
				return nil, errors.Wrapf(ErrBadAccessor, "channel %d: output is %T", ci, rawOut)
			}
			euler := make([]mgl32.Vec3, len(times))
			for k := range times {
				euler[k] = math.EulerFromQuat(quat(values[k*stride+offset]))
				if k > 0 {
					for c := 0; c < 3; c++ {
						euler[k][c] = math.UnwrapAngle(euler[k][c], euler[k-1][c])
					}
				}
			}
			for c := 0; c < 3; c++ {
				jt.Rotation[c] = buildTrack(times, fps, interp, func(k int) float32 { return euler[k][c] })
			}

		default:
			continue
		}

		if n := len(times); n > 0 && times[n-1]*fps > clip.Duration {
			clip.Duration = times[n-1] * fps
		}
	}
	return clip, nil
}

func buildTrack(times []float32, fps float32, interp anim.Interpolation, value func(int) float32) anim.Track {
	keys := make([]anim.Key, len(times))
	for k, t := range times {
		keys[k] = anim.Key{Frame: t * fps, Value: value(k)}
	}
	return anim.Track{Keys: keys, Interp: interp}
}
