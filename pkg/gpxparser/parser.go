package gpxparser

import (
	"bufio"
	"bytes"
	"io"

	"github.com/dsnet/compress/bzip2"
	da "github.com/lintang-b-s/curvematch/pkg/datastructure"
	"github.com/lintang-b-s/curvematch/pkg/geo"
	"github.com/lintang-b-s/curvematch/pkg/util"
	"github.com/twpayne/go-gpx"
)

var bzip2Magic = []byte("BZh")

// Parse. decodes a gpx document, optionally bzip2 compressed, into an input route.
// points come from every segment of the first track, or from the first route when there is no track.
// points without <ele> add no elevation sample, so the profile can be shorter than the geometry.
// the elevation profile is empty when no point carries an elevation.
func Parse(r io.Reader) (*da.InputRoute, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(len(bzip2Magic))

	var src io.Reader = br
	if bytes.Equal(head, bzip2Magic) {
		bz, err := bzip2.NewReader(br, nil)
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrBadParamInput, "invalid bzip2 stream")
		}
		defer bz.Close()
		src = bz
	}

	g, err := gpx.Read(src)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrBadParamInput, "invalid gpx document")
	}

	var (
		name string
		wpts []*gpx.WptType
	)
	if len(g.Trk) > 0 && g.Trk[0] != nil {
		trk := g.Trk[0]
		name = trk.Name
		for _, seg := range trk.TrkSeg {
			if seg == nil {
				continue
			}
			wpts = append(wpts, seg.TrkPt...)
		}
	} else if len(g.Rte) > 0 && g.Rte[0] != nil {
		name = g.Rte[0].Name
		wpts = g.Rte[0].RtePt
	}
	if name == "" && g.Metadata != nil {
		name = g.Metadata.Name
	}

	geometry := make([]geo.Point, 0, len(wpts))
	profile := make([]float64, 0, len(wpts))
	hasEle := false
	for _, p := range wpts {
		if p == nil {
			continue
		}
		pt := geo.NewPoint(p.Lon, p.Lat)
		if !pt.IsValid() {
			return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "invalid coordinate lat=%v lon=%v", p.Lat, p.Lon)
		}
		geometry = append(geometry, pt)
		// go-gpx decodes a missing <ele> as 0, such points carry no elevation sample
		if p.Ele != 0 {
			profile = append(profile, p.Ele)
			hasEle = true
		}
	}
	if len(geometry) < 2 {
		return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "gpx must contain at least 2 track or route points, got %d",
			len(geometry))
	}
	if !hasEle {
		profile = nil
	}
	return da.NewInputRoute(name, geometry, profile), nil
}
