package layout

// Paper geometry for thermal printers. The print head resolves 203dpi, i.e.
// 8 dots per millimetre; a 58mm roll exposes a 48mm printable band (384 dots)
// and an 80mm roll a 72mm band (576 dots).

// DotsPerMM is the horizontal resolution of a 203dpi thermal head.
const DotsPerMM = 8.0

// Supersample is the factor the raster backend renders at before
// downsampling to the nominal width.
const Supersample = 2

// Margin is the blank edge kept on every side of the composed receipt, px.
const Margin = 8.0

const (
	defaultPaperMM = 58
	paperMargin    = 10 // non-printable band across both edges, mm
)

// PaperWidthPx returns the printable width in pixels for a paper width in
// millimetres. Unknown widths derive from the printable band; 58mm and 80mm
// use the exact head widths.
func PaperWidthPx(paperMM int) float64 {
	switch paperMM {
	case 58:
		return 384
	case 80:
		return 576
	default:
		if paperMM <= paperMargin {
			return PaperWidthPx(defaultPaperMM)
		}
		return float64(paperMM-paperMargin) * DotsPerMM
	}
}

// CharBudget returns the Font A character line width for a paper width in
// millimetres: 32 columns on 58mm rolls, 48 on 80mm.
func CharBudget(paperMM int) int {
	switch paperMM {
	case 58:
		return 32
	case 80:
		return 48
	default:
		return int(PaperWidthPx(paperMM) / 12)
	}
}

// MMToPx converts millimetres to pixels at head resolution.
func MMToPx(mm float64) float64 { return mm * DotsPerMM }

// PxToMM converts pixels at head resolution to millimetres.
func PxToMM(px float64) float64 { return px / DotsPerMM }
