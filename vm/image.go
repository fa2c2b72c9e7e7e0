package vm

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

const (
	ImageMagic   = "LUMENBC"
	ImageVersion = 1
)

var ErrBadImage = errors.New("not a lumen bytecode image")

// Image is the on-disk form of a compiled program.
type Image struct {
	Magic   string
	Version int
	Main    *Closure
}

var imageEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("vm: failed to create CBOR enc mode: %v", err))
	}
	imageEncMode = em
}

// MarshalImage encodes c with canonical CBOR, so equal closures always
// produce identical bytes.
func MarshalImage(c *Closure) ([]byte, error) {
	if c == nil {
		return nil, errors.New("vm: cannot marshal nil closure")
	}
	return imageEncMode.Marshal(&Image{Magic: ImageMagic, Version: ImageVersion, Main: c})
}

func UnmarshalImage(data []byte) (*Closure, error) {
	var img Image
	if err := cbor.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadImage, err)
	}
	if img.Magic != ImageMagic {
		return nil, ErrBadImage
	}
	if img.Version != ImageVersion {
		return nil, fmt.Errorf("vm: unsupported image version %d", img.Version)
	}
	if img.Main == nil {
		return nil, fmt.Errorf("vm: image has no main closure")
	}
	if err := img.Main.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadImage, err)
	}
	return img.Main, nil
}
