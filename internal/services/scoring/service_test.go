package scoring

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/colorclaim/internal/model"
)

type ServiceSuite struct {
	suite.Suite
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.service = New()
}

// Helper to build an RGBA buffer from repeated pixels
func canvas(pixels ...[4]byte) []byte {
	buf := make([]byte, 0, len(pixels)*4)
	for _, p := range pixels {
		buf = append(buf, p[:]...)
	}
	return buf
}

func repeat(p [4]byte, n int) [][4]byte {
	out := make([][4]byte, n)
	for i := range out {
		out[i] = p
	}
	return out
}

var (
	red    = [4]byte{255, 0, 0, 255}
	blue   = [4]byte{0, 0, 255, 255}
	green  = [4]byte{0, 255, 0, 255}
	purple = [4]byte{128, 0, 128, 255}
	white  = [4]byte{255, 255, 255, 255}
)

func (s *ServiceSuite) TestRedMajorityWins() {
	pixels := append(repeat(red, 5), repeat(blue, 3)...)
	buf := canvas(pixels...)

	verdict, err := s.service.Score(buf, len(buf))

	s.Require().NoError(err)
	s.Equal(model.ColorRed, verdict.Winner)
	s.Equal("Red Wins", verdict.Text())
	s.Equal(model.ColorCounts{Red: 5, Blue: 3}, verdict.Counts)
}

func (s *ServiceSuite) TestFourWayTieHasNoWinner() {
	var pixels [][4]byte
	for _, p := range [][4]byte{red, blue, green, purple} {
		pixels = append(pixels, repeat(p, 2)...)
	}
	buf := canvas(pixels...)

	verdict, err := s.service.Score(buf, len(buf))

	s.Require().NoError(err)
	s.False(verdict.HasWinner())
	s.Equal(model.VerdictNoWinnerText, verdict.Text())
}

func (s *ServiceSuite) TestTieAtTopBeatsLowerCounts() {
	buf := canvas(red, red, blue, blue, green)

	verdict, err := s.service.Score(buf, len(buf))

	s.Require().NoError(err)
	s.False(verdict.HasWinner())
}

func (s *ServiceSuite) TestEmptyCanvasHasNoWinner() {
	verdict, err := s.service.Score(nil, 0)

	s.Require().NoError(err)
	s.False(verdict.HasWinner())
	s.Equal(model.ColorCounts{}, verdict.Counts)
}

func (s *ServiceSuite) TestOnlyExactMatchesCount() {
	nearlyRed := [4]byte{254, 0, 0, 255}
	translucentBlue := [4]byte{0, 0, 255, 128}
	buf := canvas(nearlyRed, translucentBlue, white, green)

	verdict, err := s.service.Score(buf, len(buf))

	s.Require().NoError(err)
	s.Equal(model.ColorCounts{Green: 1}, verdict.Counts)
	s.Equal(model.ColorGreen, verdict.Winner)
	s.Equal("Green Wins", verdict.Text())
}

func (s *ServiceSuite) TestPurpleAndBlueWins() {
	tests := []struct {
		name   string
		pixels [][4]byte
		want   model.Color
		text   string
	}{
		{"purple", append(repeat(purple, 3), red), model.ColorPurple, "Purple Wins"},
		{"blue", append(repeat(blue, 2), green), model.ColorBlue, "Blue Wins"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			buf := canvas(tt.pixels...)
			verdict, err := s.service.Score(buf, len(buf))
			s.Require().NoError(err)
			s.Equal(tt.want, verdict.Winner)
			s.Equal(tt.text, verdict.Text())
		})
	}
}

func (s *ServiceSuite) TestPixelOrderDoesNotMatter() {
	a := canvas(red, blue, red, green, red, purple)
	b := canvas(purple, red, green, red, blue, red)

	va, err := s.service.Score(a, len(a))
	s.Require().NoError(err)
	vb, err := s.service.Score(b, len(b))
	s.Require().NoError(err)

	s.Equal(va, vb)
}

func (s *ServiceSuite) TestPixelCountLimitsScan() {
	buf := canvas(blue, red, red, red)

	verdict, err := s.service.Score(buf, 4)

	s.Require().NoError(err)
	s.Equal(model.ColorBlue, verdict.Winner)
}

func (s *ServiceSuite) TestInvalidPixelCount() {
	buf := canvas(red, red)

	tests := []struct {
		name  string
		count int
	}{
		{"not a multiple of four", 6},
		{"negative", -4},
		{"larger than buffer", 12},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.service.Score(buf, tt.count)
			s.ErrorIs(err, model.ErrInvalidBuffer)
		})
	}
}

func (s *ServiceSuite) TestScoreImage() {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for x := 0; x < 3; x++ {
		img.Set(x, 0, color.NRGBA{R: 128, B: 128, A: 255})
	}
	img.Set(0, 1, color.NRGBA{R: 255, A: 255})

	verdict, err := s.service.ScoreImage(img)

	s.Require().NoError(err)
	s.Equal(model.ColorPurple, verdict.Winner)
	s.Equal(3, verdict.Counts.Purple)
	s.Equal(1, verdict.Counts.Red)
}

func (s *ServiceSuite) TestScoreSubImage() {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(3, 3, color.RGBA{B: 255, A: 255})
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	img.Set(1, 0, color.RGBA{R: 255, A: 255})

	sub := img.SubImage(image.Rect(2, 2, 4, 4))
	verdict, err := s.service.ScoreImage(sub)

	s.Require().NoError(err)
	s.Equal(model.ColorBlue, verdict.Winner)
	s.Equal(model.ColorCounts{Blue: 1}, verdict.Counts)
}
