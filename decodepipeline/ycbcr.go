package decodepipeline

import "github.com/echoflaresat/tifflayout/tifferr"

// ycbcrToRGB converts a chunky YCbCr buffer (subsampled per
// YCbCrSubXLog/YCbCrSubYLog) to chunky 8-bit RGB, per spec §4.5 step 6,
// using the ITU-R-style transform parameterized by YCbCrCoefficients and
// ReferenceBlackWhite.
func ycbcrToRGB(decoded []byte, in Input) ([]byte, error) {
	if in.BytesPerSample != 1 {
		return nil, tifferr.New(tifferr.Unsupported, "YCbCr conversion only supports 8-bit samples")
	}
	subX := 1 << in.YCbCrSubXLog
	subY := 1 << in.YCbCrSubYLog

	blocksX := (in.SizeX + subX - 1) / subX
	lumaPerBlock := subX * subY
	blockStride := lumaPerBlock + 2 // Y*n, Cb, Cr

	out := make([]byte, in.SizeX*in.SizeY*3)

	lumaRed, lumaGreen, lumaBlue := in.YCbCrCoefficients[0], in.YCbCrCoefficients[1], in.YCbCrCoefficients[2]
	refBW := in.ReferenceBlackWhite

	for blockY := 0; blockY*subY < in.SizeY; blockY++ {
		for blockX := 0; blockX < blocksX; blockX++ {
			blockOff := (blockY*blocksX + blockX) * blockStride
			if blockOff+blockStride > len(decoded) {
				continue
			}
			cb := float64(decoded[blockOff+lumaPerBlock])
			cr := float64(decoded[blockOff+lumaPerBlock+1])

			for dy := 0; dy < subY; dy++ {
				py := blockY*subY + dy
				if py >= in.SizeY {
					continue
				}
				for dx := 0; dx < subX; dx++ {
					px := blockX*subX + dx
					if px >= in.SizeX {
						continue
					}
					y := float64(decoded[blockOff+dy*subX+dx])
					r, g, b := ycbcrSampleToRGB(y, cb, cr, lumaRed, lumaGreen, lumaBlue, refBW)
					dstOff := (py*in.SizeX + px) * 3
					out[dstOff] = r
					out[dstOff+1] = g
					out[dstOff+2] = b
				}
			}
		}
	}
	return out, nil
}

func ycbcrSampleToRGB(y, cb, cr, lumaRed, lumaGreen, lumaBlue float64, refBW [6]float64) (r, g, b byte) {
	// Rescale luma/chroma against the reference black/white range before
	// applying the inverse transform, per the TIFF spec's YCbCr section.
	yBlack, yWhite := refBW[0], refBW[1]
	cbWhite, crWhite := refBW[3], refBW[5]

	yScaled := (y - yBlack) * 255 / (yWhite - yBlack)
	cbScaled := (cb - 128) * 127 / (cbWhite - 128)
	crScaled := (cr - 128) * 127 / (crWhite - 128)

	rf := yScaled + crScaled*(2-2*lumaRed)
	bf := yScaled + cbScaled*(2-2*lumaBlue)
	gf := (yScaled - lumaRed*rf - lumaBlue*bf) / lumaGreen

	return clampByte(rf), clampByte(gf), clampByte(bf)
}

func clampByte(v float64) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v + 0.5)
}
