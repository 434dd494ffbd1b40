package labels

import "image/color"

// Coarse class ids.
const (
	// Road is drivable road surface.
	Road uint8 = iota
	// Flat is non-drivable flat ground such as sidewalks and parking.
	Flat
	// Human covers persons and riders.
	Human
	// Vehicle covers every wheeled vehicle.
	Vehicle
	// Construction covers buildings, walls and fences.
	Construction
	// Object is the street furniture group: poles, traffic lights and signs.
	Object
	// Void is sky plus every background, ignored or unmapped class.
	Void
)

const (
	// NumCoarse is the number of coarse classes.
	NumCoarse = 7
	// Unlabeled is the fine id used for unknown pixels.
	Unlabeled uint8 = 255
	// MaxFine is the largest regular fine id.
	MaxFine uint8 = 33
)

// Class is one entry of a taxonomy.
type Class struct {
	// ID is the value stored in label rasters.
	ID uint8
	// Name is the human-readable label.
	Name string
}

// CoarseClass is a coarse taxonomy entry with its preview color.
type CoarseClass struct {
	Class
	// Color is used when rendering label previews.
	Color color.RGBA
}

// FineClasses lists the fine taxonomy in id order, followed by Unlabeled.
var FineClasses = []Class{
	{0, "unlabeled"}, {1, "ego vehicle"}, {2, "rectification border"}, {3, "out of roi"},
	{4, "static"}, {5, "dynamic"}, {6, "ground"}, {7, "road"}, {8, "sidewalk"},
	{9, "parking"}, {10, "rail track"}, {11, "building"}, {12, "wall"}, {13, "fence"},
	{14, "guard rail"}, {15, "bridge"}, {16, "tunnel"}, {17, "pole"}, {18, "polegroup"},
	{19, "traffic light"}, {20, "traffic sign"}, {21, "vegetation"}, {22, "terrain"},
	{23, "sky"}, {24, "person"}, {25, "rider"}, {26, "car"}, {27, "truck"}, {28, "bus"},
	{29, "caravan"}, {30, "trailer"}, {31, "train"}, {32, "motorcycle"}, {33, "bicycle"},
	{Unlabeled, "unknown"},
}

// CoarseClasses lists the coarse taxonomy in id order.
var CoarseClasses = []CoarseClass{
	{Class{Road, "road"}, color.RGBA{R: 26, G: 51, B: 204, A: 255}},
	{Class{Flat, "flat"}, color.RGBA{R: 255, G: 128, B: 0, A: 255}},
	{Class{Human, "human"}, color.RGBA{R: 51, G: 204, B: 51, A: 255}},
	{Class{Vehicle, "vehicle"}, color.RGBA{R: 204, G: 26, B: 26, A: 255}},
	{Class{Construction, "construction"}, color.RGBA{R: 153, G: 102, B: 204, A: 255}},
	{Class{Object, "object"}, color.RGBA{R: 128, G: 77, B: 26, A: 255}},
	{Class{Void, "void"}, color.RGBA{R: 128, G: 128, B: 128, A: 255}},
}

// FineDomain returns every fine id a label raster may legally contain.
func FineDomain() []uint8 {
	ids := make([]uint8, 0, len(FineClasses))
	for _, c := range FineClasses {
		ids = append(ids, c.ID)
	}
	return ids
}

// CoarseName returns the name of a coarse id, or "" when the id is out of range.
func CoarseName(id uint8) string {
	if int(id) >= len(CoarseClasses) {
		return ""
	}
	return CoarseClasses[id].Name
}
