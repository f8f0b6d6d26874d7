package media

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/corona10/goimagehash"
)

// HashBits is the width of an ImageHash.
const HashBits = 64

// ImageHash is the 64-bit DCT perceptual hash of a frame.
type ImageHash uint64

// HashFile decodes an image file and hashes it.
func HashFile(path string) (ImageHash, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return 0, fmt.Errorf("decode image: %w", err)
	}
	return Hash(img)
}

// Hash computes the perceptual hash of img.
func Hash(img image.Image) (ImageHash, error) {
	h, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return 0, fmt.Errorf("perception hash: %w", err)
	}
	return ImageHash(h.GetHash()), nil
}

// Distance is the Hamming distance between two hashes.
func Distance(a, b ImageHash) int {
	d, err := goimagehash.NewImageHash(uint64(a), goimagehash.PHash).
		Distance(goimagehash.NewImageHash(uint64(b), goimagehash.PHash))
	if err != nil {
		// Both sides are built as PHash, so the kinds always match.
		return HashBits
	}
	return d
}

// MaxDistance converts a similarity threshold in (0,1] to the largest
// Hamming distance still treated as a duplicate.
func MaxDistance(similarity float64) int {
	return int((1 - similarity) * HashBits)
}

// Dedup returns the indexes of hashes to keep: the first of every group of
// near-identical images, in input order.
func Dedup(hashes []ImageHash, similarity float64) []int {
	limit := MaxDistance(similarity)
	keep := make([]int, 0, len(hashes))
	for i, h := range hashes {
		duplicate := false
		for _, k := range keep {
			if Distance(h, hashes[k]) <= limit {
				duplicate = true
				break
			}
		}
		if !duplicate {
			keep = append(keep, i)
		}
	}
	return keep
}
