package formats

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/Faultbox/jointmorph/internal/logger"
)

// LoadBundle reads a bundle file, choosing the decoder by extension:
// .yaml/.yml bundle documents and .gltf/.glb files. fps converts glTF key
// times to frames and is ignored for YAML.
func LoadBundle(path string, fps float32) (*Bundle, error) {
	var (
		b   *Bundle
		err error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var data []byte
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", path)
		}
		b, err = ParseBundle(data)

	case ".gltf", ".glb":
		var doc *gltf.Document
		doc, err = gltf.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "opening %s", path)
		}
		b, err = ImportGLTF(doc, fps)

	default:
		return nil, errors.Wrapf(ErrUnknownFormat, "%s", path)
	}

	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}

	logger.Info("bundle loaded",
		zap.String("path", path),
		zap.String("model", b.Model.Name),
		zap.Int("joints", len(b.Model.Joints)),
		zap.Int("clips", len(b.Clips)))
	return b, nil
}
