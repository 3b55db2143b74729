package formats

import (
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/jointmorph/internal/logger"
	"github.com/Faultbox/jointmorph/pkg/anim"
	"github.com/Faultbox/jointmorph/pkg/math"
	"github.com/Faultbox/jointmorph/pkg/model"
)

// Bundle document layout. Angles are written in degrees.
type bundleDoc struct {
	Model *modelDoc `yaml:"model"`
	Clips []clipDoc `yaml:"clips"`
}

type modelDoc struct {
	Name        string        `yaml:"name"`
	ScalingRule string        `yaml:"scaling_rule"`
	Shapes      int           `yaml:"shapes"`
	Materials   []materialDoc `yaml:"materials"`
	Joints      []jointDoc    `yaml:"joints"`
}

type materialDoc struct {
	Name    string `yaml:"name"`
	TexMtx  int    `yaml:"tex_mtx"`
	TexMaps int    `yaml:"tex_maps"`
}

type jointDoc struct {
	Name              string      `yaml:"name"`
	Parent            string      `yaml:"parent"`
	Translation       [3]float32  `yaml:"translation"`
	Rotation          [3]float32  `yaml:"rotation"`
	Scale             *[3]float32 `yaml:"scale"`
	IgnoreParentScale bool        `yaml:"ignore_parent_scale"`
}

type clipDoc struct {
	Name     string    `yaml:"name"`
	Kind     string    `yaml:"kind"`
	Duration float32   `yaml:"duration"`
	Loop     string    `yaml:"loop"`
	Entries  yaml.Node `yaml:"entries"`
	Shapes   [][]bool  `yaml:"shapes"`
}

type jointTrackDoc struct {
	Joint       string      `yaml:"joint"`
	Scale       [3]trackDoc `yaml:"scale"`
	Rotation    [3]trackDoc `yaml:"rotation"`
	Translation [3]trackDoc `yaml:"translation"`
}

type texMtxDoc struct {
	Material     string   `yaml:"material"`
	TexMtx       int      `yaml:"tex_mtx"`
	ScaleS       trackDoc `yaml:"scale_s"`
	ScaleT       trackDoc `yaml:"scale_t"`
	Rotation     trackDoc `yaml:"rotation"`
	TranslationS trackDoc `yaml:"translation_s"`
	TranslationT trackDoc `yaml:"translation_t"`
}

type tevRegDoc struct {
	Material string   `yaml:"material"`
	Register string   `yaml:"register"`
	Index    int      `yaml:"index"`
	R        trackDoc `yaml:"r"`
	G        trackDoc `yaml:"g"`
	B        trackDoc `yaml:"b"`
	A        trackDoc `yaml:"a"`
}

type texNoDoc struct {
	Material string   `yaml:"material"`
	TexMap   int      `yaml:"tex_map"`
	Keys     trackDoc `yaml:"keys"`
}

// trackDoc accepts a constant (`1.5`), a key list (`[[0, 1], [10, 2]]`) or a
// mapping with an interpolation (`{interp: step, keys: [[0, 1]]}`).
type trackDoc struct {
	anim.Track
}

func (t *trackDoc) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		var v float32
		if err := n.Decode(&v); err != nil {
			return err
		}
		t.Track = anim.ConstTrack(v)
		return nil

	case yaml.SequenceNode:
		var pairs [][2]float32
		if err := n.Decode(&pairs); err != nil {
			return err
		}
		t.Track = anim.Track{Keys: keysFromPairs(pairs)}
		return nil

	case yaml.MappingNode:
		var raw struct {
			Interp string       `yaml:"interp"`
			Keys   [][2]float32 `yaml:"keys"`
		}
		if err := n.Decode(&raw); err != nil {
			return err
		}
		interp, err := parseInterp(raw.Interp)
		if err != nil {
			return errors.Wrapf(err, "line %d", n.Line)
		}
		t.Track = anim.Track{Keys: keysFromPairs(raw.Keys), Interp: interp}
		return nil

	default:
		return errors.Errorf("line %d: track must be a number, key list or mapping", n.Line)
	}
}

func keysFromPairs(pairs [][2]float32) []anim.Key {
	keys := make([]anim.Key, len(pairs))
	for i, p := range pairs {
		keys[i] = anim.Key{Frame: p[0], Value: p[1]}
	}
	sort.SliceStable(keys, func(i, j int) bool { return keys[i].Frame < keys[j].Frame })
	return keys
}

func parseInterp(s string) (anim.Interpolation, error) {
	switch strings.ToLower(s) {
	case "", "linear":
		return anim.InterpLinear, nil
	case "step", "constant":
		return anim.InterpStep, nil
	default:
		return 0, errors.Errorf("unknown interpolation %q", s)
	}
}

// degrees converts a track authored in degrees to radians.
func degrees(t trackDoc) anim.Track {
	out := anim.Track{Keys: make([]anim.Key, len(t.Keys)), Interp: t.Interp}
	for i, k := range t.Keys {
		out.Keys[i] = anim.Key{Frame: k.Frame, Value: mgl32.DegToRad(k.Value)}
	}
	return out
}

// trackEnd returns the last keyed frame of the tracks.
func trackEnd(tracks ...anim.Track) float32 {
	var end float32
	for _, t := range tracks {
		if n := len(t.Keys); n > 0 && t.Keys[n-1].Frame > end {
			end = t.Keys[n-1].Frame
		}
	}
	return end
}

// ParseBundle decodes a YAML bundle document.
func ParseBundle(data []byte) (*Bundle, error) {
	var doc bundleDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "decoding bundle")
	}
	if doc.Model == nil {
		return nil, ErrNoModel
	}

	md, err := buildModel(doc.Model)
	if err != nil {
		return nil, errors.Wrapf(err, "model %q", doc.Model.Name)
	}

	b := &Bundle{Model: md}
	for i := range doc.Clips {
		cd := &doc.Clips[i]
		clip, err := buildClip(cd, md)
		if err != nil {
			return nil, errors.Wrapf(err, "clip %q", cd.Name)
		}
		if err := b.addClip(clip); err != nil {
			return nil, err
		}
		logger.Debug("clip loaded",
			zap.String("model", md.Name),
			zap.String("clip", cd.Name),
			zap.String("kind", cd.Kind),
			zap.Float32("duration", clip.Header().Duration))
	}
	return b, nil
}

func buildModel(doc *modelDoc) (*model.ModelData, error) {
	rule, err := model.ParseScalingRule(doc.ScalingRule)
	if err != nil {
		return nil, err
	}

	md := &model.ModelData{
		Name:       doc.Name,
		LoadFlags:  model.LoadFlags(0).WithScalingRule(rule),
		ShapeCount: doc.Shapes,
		Joints:     make([]model.Joint, len(doc.Joints)),
		Materials:  make([]model.MaterialData, len(doc.Materials)),
	}
	for i, m := range doc.Materials {
		md.Materials[i] = model.MaterialData{Name: m.Name, TexMtxCount: m.TexMtx, TexMapCount: m.TexMaps}
	}

	for i := range doc.Joints {
		md.Joints[i].Name = doc.Joints[i].Name
	}
	for i, jd := range doc.Joints {
		parent := -1
		if jd.Parent != "" {
			parent = md.JointIndex(jd.Parent)
			if parent < 0 {
				return nil, errors.Wrapf(ErrUnknownJoint, "parent %q of joint %q", jd.Parent, jd.Name)
			}
		}

		scale := math.One
		if jd.Scale != nil {
			scale = mgl32.Vec3(*jd.Scale)
		}
		md.Joints[i] = model.Joint{
			Name:   jd.Name,
			Parent: parent,
			Transform: math.Transform{
				Scale: scale,
				Rotation: mgl32.Vec3{
					mgl32.DegToRad(jd.Rotation[0]),
					mgl32.DegToRad(jd.Rotation[1]),
					mgl32.DegToRad(jd.Rotation[2]),
				},
				Translation: mgl32.Vec3(jd.Translation),
			},
			IgnoreParentScale: jd.IgnoreParentScale,
		}
	}

	if err := md.Validate(); err != nil {
		return nil, err
	}
	return md, nil
}

func buildClip(cd *clipDoc, md *model.ModelData) (anim.Clip, error) {
	loop, err := anim.ParseLoopMode(cd.Loop)
	if err != nil {
		return nil, err
	}
	if loop == anim.LoopInherit {
		loop = anim.LoopRepeat
	}
	header := anim.ClipHeader{Name: cd.Name, Duration: cd.Duration, LoopMode: loop}

	switch ClipKind(strings.ToLower(cd.Kind)) {
	case KindJoint:
		var entries []jointTrackDoc
		if err := decodeEntries(cd, &entries); err != nil {
			return nil, err
		}
		clip := &anim.JointClip{ClipHeader: header, Joints: make([]anim.JointTrack, len(md.Joints))}
		for ji := range clip.Joints {
			clip.Joints[ji] = restTracks(md.Joints[ji].Transform)
		}
		for _, e := range entries {
			ji := md.JointIndex(e.Joint)
			if ji < 0 {
				return nil, errors.Wrapf(ErrUnknownJoint, "%q", e.Joint)
			}
			jt := &clip.Joints[ji]
			for c := 0; c < 3; c++ {
				if len(e.Scale[c].Keys) > 0 {
					jt.Scale[c] = e.Scale[c].Track
				}
				if len(e.Rotation[c].Keys) > 0 {
					jt.Rotation[c] = degrees(e.Rotation[c])
				}
				if len(e.Translation[c].Keys) > 0 {
					jt.Translation[c] = e.Translation[c].Track
				}
			}
		}
		if cd.Duration == 0 {
			for i := range clip.Joints {
				clip.Duration = max(clip.Duration, jointTrackEnd(&clip.Joints[i]))
			}
		}
		return clip, nil

	case KindTexMtx:
		var entries []texMtxDoc
		if err := decodeEntries(cd, &entries); err != nil {
			return nil, err
		}
		clip := &anim.TexMtxClip{ClipHeader: header}
		for _, e := range entries {
			t := anim.TexMtxTrack{
				Material:     e.Material,
				TexMtx:       e.TexMtx,
				ScaleS:       e.ScaleS.Track,
				ScaleT:       e.ScaleT.Track,
				Rotation:     degrees(e.Rotation),
				TranslationS: e.TranslationS.Track,
				TranslationT: e.TranslationT.Track,
			}
			clip.Entries = append(clip.Entries, t)
			if cd.Duration == 0 {
				clip.Duration = max(clip.Duration, trackEnd(t.ScaleS, t.ScaleT, t.Rotation, t.TranslationS, t.TranslationT))
			}
		}
		return clip, nil

	case KindTevReg:
		var entries []tevRegDoc
		if err := decodeEntries(cd, &entries); err != nil {
			return nil, err
		}
		clip := &anim.TevRegClip{ClipHeader: header}
		for _, e := range entries {
			reg, err := parseRegister(e.Register)
			if err != nil {
				return nil, err
			}
			t := anim.TevRegTrack{
				Material: e.Material,
				Register: reg,
				Index:    e.Index,
				R:        e.R.Track,
				G:        e.G.Track,
				B:        e.B.Track,
				A:        e.A.Track,
			}
			clip.Entries = append(clip.Entries, t)
			if cd.Duration == 0 {
				clip.Duration = max(clip.Duration, trackEnd(t.R, t.G, t.B, t.A))
			}
		}
		return clip, nil

	case KindTexNo:
		var entries []texNoDoc
		if err := decodeEntries(cd, &entries); err != nil {
			return nil, err
		}
		clip := &anim.TexNoClip{ClipHeader: header}
		for _, e := range entries {
			keys := e.Keys.Track
			keys.Interp = anim.InterpStep
			clip.Entries = append(clip.Entries, anim.TexNoTrack{Material: e.Material, TexMap: e.TexMap, Keys: keys})
			if cd.Duration == 0 {
				clip.Duration = max(clip.Duration, trackEnd(keys))
			}
		}
		return clip, nil

	case KindVisibility:
		clip := &anim.VisibilityClip{ClipHeader: header, Shapes: cd.Shapes}
		if cd.Duration == 0 {
			for _, s := range cd.Shapes {
				clip.Duration = max(clip.Duration, float32(len(s)))
			}
		}
		return clip, nil

	default:
		return nil, errors.Wrapf(ErrUnknownClipKind, "%q", cd.Kind)
	}
}

func jointTrackEnd(jt *anim.JointTrack) float32 {
	return trackEnd(
		jt.Scale[0], jt.Scale[1], jt.Scale[2],
		jt.Rotation[0], jt.Rotation[1], jt.Rotation[2],
		jt.Translation[0], jt.Translation[1], jt.Translation[2],
	)
}

func decodeEntries(cd *clipDoc, out any) error {
	if cd.Entries.Kind == 0 {
		return nil
	}
	return errors.Wrap(cd.Entries.Decode(out), "entries")
}

func parseRegister(s string) (anim.ColorRegister, error) {
	switch strings.ToLower(s) {
	case "", "tev", "color":
		return anim.ColorRegisterTev, nil
	case "konst":
		return anim.ColorRegisterKonst, nil
	default:
		return 0, errors.Errorf("unknown color register %q", s)
	}
}
