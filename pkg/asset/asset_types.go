package asset

import "fmt"

var (
	ErrUnknownExtension = fmt.Errorf("unknown extension")
	ErrUnknownFlavor    = fmt.Errorf("unknown flavor")
)

// Kind is the media type family of an asset
type Kind int

const (
	KindUnknown Kind = iota
	KindImage
	KindAudio
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindAudio:
		return "audio"
	default:
		return "unknown"
	}
}

// Flavor selects the disguised extension family used when obfuscating
type Flavor string

const (
	// FlavorMV produces .rpgmvp/.rpgmvm/.rpgmvo files
	FlavorMV Flavor = "mv"
	// FlavorMZ produces .png_/.m4a_/.ogg_ files
	FlavorMZ Flavor = "mz"
)

// Asset is one file on disk, encrypted or not
type Asset struct {
	Path      string // Absolute or root-relative path
	Rel       string // Path relative to the scan root, slash separated
	Extension string // Extension without the leading dot
	Size      int64
}

// Real extensions
const (
	ExtPNG = "png"
	ExtM4A = "m4a"
	ExtOGG = "ogg"
)

// realByFake is the closed mapping of disguised to real extensions
var realByFake = map[string]string{
	"rpgmvp": ExtPNG,
	"png_":   ExtPNG,
	"rpgmvm": ExtM4A,
	"m4a_":   ExtM4A,
	"rpgmvo": ExtOGG,
	"ogg_":   ExtOGG,
}

var fakeByReal = map[Flavor]map[string]string{
	FlavorMV: {ExtPNG: "rpgmvp", ExtM4A: "rpgmvm", ExtOGG: "rpgmvo"},
	FlavorMZ: {ExtPNG: "png_", ExtM4A: "m4a_", ExtOGG: "ogg_"},
}
