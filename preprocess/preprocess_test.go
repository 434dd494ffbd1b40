package preprocess

import (
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-cityscapes/images"
	"github.com/nvr-ai/go-cityscapes/labels"
)

// fixedCoin always returns the same draw and counts how often it was asked.
type fixedCoin struct {
	value float64
	draws int
}

func (c *fixedCoin) Float64() float64 {
	c.draws++
	return c.value
}

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 3), G: uint8(y * 11), B: uint8(x ^ y), A: 255})
		}
	}
	return img
}

func testGrids(w, h int) (*labels.Grid, *labels.Grid) {
	coarse := labels.NewGrid(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			coarse.Set(x, y, uint8((x/3+y)%labels.NumCoarse))
		}
	}
	return coarse, labels.Objectness(coarse)
}

func smallConfig() *Config {
	config := GetCityscapesConfig()
	config.Name = "test"
	config.InputWidth = 16
	config.InputHeight = 8
	return config
}

func newTransformer(t *testing.T, config *Config) *Transformer {
	t.Helper()
	tr, err := NewTransformer(config, zerolog.Nop())
	require.NoError(t, err)
	return tr
}

func TestTransformOutputShapes(t *testing.T) {
	tr := newTransformer(t, GetCityscapesConfig())

	sizes := [][2]int{{2048, 1024}, {1024, 512}, {640, 480}, {33, 17}}
	for _, size := range sizes {
		coarse, obj := testGrids(size[0], size[1])
		out, err := tr.Transform(testImage(size[0], size[1]), coarse, obj, false, nil)
		require.NoError(t, err)

		assert.Equal(t, []int{3, 512, 1024}, []int(out.Image.Shape()), "source %v", size)
		assert.Equal(t, []int{512, 1024}, []int(out.Labels.Shape()), "source %v", size)
		assert.Equal(t, []int{512, 1024}, []int(out.Objectness.Shape()), "source %v", size)
		assert.False(t, out.Flipped)

		_, ok := out.Image.Data().([]float32)
		assert.True(t, ok, "image tensor is float32")
		_, ok = out.Labels.Data().([]int64)
		assert.True(t, ok, "label tensor is int64")
		_, ok = out.Objectness.Data().([]float32)
		assert.True(t, ok, "objectness tensor is float32")
	}
}

func TestTransformNormalization(t *testing.T) {
	config := smallConfig()
	tr := newTransformer(t, config)

	img := image.NewRGBA(image.Rect(0, 0, 32, 16))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 255, 0, 128, 255
	}
	coarse, obj := testGrids(32, 16)

	out, err := tr.Transform(img, coarse, obj, false, nil)
	require.NoError(t, err)

	data := out.Image.Data().([]float32)
	plane := 16 * 8
	want := [3]float32{
		(1.0 - 0.485) / 0.229,
		(0.0 - 0.456) / 0.224,
		(128.0/255.0 - 0.406) / 0.225,
	}
	for c := 0; c < 3; c++ {
		for i := 0; i < plane; i++ {
			require.InDelta(t, want[c], data[c*plane+i], 1e-5, "channel %d", c)
		}
	}
}

func TestTransformZeroToOne(t *testing.T) {
	config := smallConfig()
	config.NormalizationType = NormalizeZeroToOne
	tr := newTransformer(t, config)

	coarse, obj := testGrids(16, 8)
	out, err := tr.Transform(testImage(16, 8), coarse, obj, false, nil)
	require.NoError(t, err)

	for _, v := range out.Image.Data().([]float32) {
		require.GreaterOrEqual(t, v, float32(0))
		require.LessOrEqual(t, v, float32(1))
	}
}

func TestTransformMasksKeepLabelValues(t *testing.T) {
	tr := newTransformer(t, smallConfig())

	coarse, obj := testGrids(50, 30)
	out, err := tr.Transform(testImage(50, 30), coarse, obj, false, nil)
	require.NoError(t, err)

	lbl := out.Labels.Data().([]int64)
	mask := out.Objectness.Data().([]float32)
	require.Len(t, lbl, 16*8)
	for i := range lbl {
		require.GreaterOrEqual(t, lbl[i], int64(0))
		require.Less(t, lbl[i], int64(labels.NumCoarse))

		wantMask := float32(0)
		if labels.IsObject(uint8(lbl[i])) {
			wantMask = 1
		}
		require.Equal(t, wantMask, mask[i], "objectness stays aligned with labels at %d", i)
	}
}

func TestTransformForcedFlipMirrorsAllOutputs(t *testing.T) {
	config := smallConfig()
	tr := newTransformer(t, config)
	w, h := config.InputWidth, config.InputHeight

	coarse, obj := testGrids(40, 20)
	img := testImage(40, 20)

	plain, err := tr.Transform(img, coarse, obj, false, nil)
	require.NoError(t, err)

	coin := &fixedCoin{value: 0}
	flipped, err := tr.Transform(img, coarse, obj, true, coin)
	require.NoError(t, err)
	assert.True(t, flipped.Flipped)
	assert.Equal(t, 1, coin.draws, "exactly one shared decision")

	pi, fi := plain.Image.Data().([]float32), flipped.Image.Data().([]float32)
	pl, fl := plain.Labels.Data().([]int64), flipped.Labels.Data().([]int64)
	po, fo := plain.Objectness.Data().([]float32), flipped.Objectness.Data().([]float32)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			mirrored := y*w + (w - 1 - x)
			i := y*w + x
			for c := 0; c < 3; c++ {
				require.Equal(t, pi[c*w*h+mirrored], fi[c*w*h+i])
			}
			require.Equal(t, pl[mirrored], fl[i])
			require.Equal(t, po[mirrored], fo[i])
		}
	}
}

func TestTransformCoinThreshold(t *testing.T) {
	tr := newTransformer(t, smallConfig())
	coarse, obj := testGrids(16, 8)

	out, err := tr.Transform(testImage(16, 8), coarse, obj, true, &fixedCoin{value: 0.49})
	require.NoError(t, err)
	assert.True(t, out.Flipped)

	out, err = tr.Transform(testImage(16, 8), coarse, obj, true, &fixedCoin{value: 0.5})
	require.NoError(t, err)
	assert.False(t, out.Flipped)
}

func TestTransformWithoutAugmentNeverDraws(t *testing.T) {
	tr := newTransformer(t, smallConfig())
	coarse, obj := testGrids(16, 8)
	coin := &fixedCoin{value: 0}

	out, err := tr.Transform(testImage(16, 8), coarse, obj, false, coin)
	require.NoError(t, err)
	assert.False(t, out.Flipped)
	assert.Zero(t, coin.draws)
}

func TestTransformSeededRandIsReproducible(t *testing.T) {
	tr := newTransformer(t, smallConfig())
	coarse, obj := testGrids(16, 8)
	img := testImage(16, 8)

	run := func() []bool {
		rng := rand.New(rand.NewSource(7))
		var flips []bool
		for i := 0; i < 20; i++ {
			out, err := tr.Transform(img, coarse, obj, true, rng)
			require.NoError(t, err)
			flips = append(flips, out.Flipped)
		}
		return flips
	}

	assert.Equal(t, run(), run())
}

func TestTransformImageMatchesBilinearResize(t *testing.T) {
	config := smallConfig()
	config.NormalizationType = NormalizeZeroToOne
	tr := newTransformer(t, config)

	img := testImage(64, 32)
	coarse, obj := testGrids(64, 32)
	out, err := tr.Transform(img, coarse, obj, false, nil)
	require.NoError(t, err)

	resized := images.Resize(img, 16, 8, images.BilinearFilter)
	data := out.Image.Data().([]float32)
	assert.InDelta(t, float32(resized.Pix[0])/255, data[0], 1e-6)
}

func TestTransformInvalidInput(t *testing.T) {
	tr := newTransformer(t, smallConfig())
	coarse, obj := testGrids(16, 8)

	_, err := tr.Transform(nil, coarse, obj, false, nil)
	assert.Error(t, err)

	_, err = tr.Transform(testImage(16, 8), coarse, labels.NewGrid(4, 4), false, nil)
	assert.Error(t, err)

	_, err = tr.Transform(testImage(16, 8), coarse, obj, true, nil)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	config := GetCityscapesConfig()
	require.NoError(t, config.Validate())

	bad := GetCityscapesConfig()
	bad.InputWidth = 0
	_, err := NewTransformer(bad, zerolog.Nop())
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	bad = GetCityscapesConfig()
	bad.StdValues[1] = 0
	assert.True(t, errors.Is(bad.Validate(), ErrInvalidConfig))

	bad = GetCityscapesConfig()
	bad.FlipProbability = 1.5
	assert.True(t, errors.Is(bad.Validate(), ErrInvalidConfig))

	_, err = NewTransformer(nil, zerolog.Nop())
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}
