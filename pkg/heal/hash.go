package heal

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/lumenworks/lumengeo/pkg/geom"
	"github.com/lumenworks/lumengeo/pkg/mesh"
)

// hashSigDigits is the significant-digit precision coordinates are rounded
// to before hashing, absorbing last-bit float noise between runs.
const hashSigDigits = 12

// StableMeshHash produces a deterministic content hash of a mesh:
// "sha256:" over a canonical JSON document (sorted keys, no whitespace) of
// the triangle indices and the vertex coordinates rounded to 12 significant
// digits. Equal geometry always hashes equal, so the hash serves as a cache
// key across imports.
func StableMeshHash(vertices []geom.Point3, triangles []mesh.Triangle) string {
	var b strings.Builder
	b.WriteString(`{"triangles":[`)
	for i, t := range triangles {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('[')
		b.WriteString(strconv.FormatUint(uint64(t[0]), 10))
		b.WriteByte(',')
		b.WriteString(strconv.FormatUint(uint64(t[1]), 10))
		b.WriteByte(',')
		b.WriteString(strconv.FormatUint(uint64(t[2]), 10))
		b.WriteByte(']')
	}
	b.WriteString(`],"vertices":[`)
	for i, v := range vertices {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('[')
		b.WriteString(roundedCoord(v.X))
		b.WriteByte(',')
		b.WriteString(roundedCoord(v.Y))
		b.WriteByte(',')
		b.WriteString(roundedCoord(v.Z))
		b.WriteByte(']')
	}
	b.WriteString(`]}`)

	sum := sha256.Sum256([]byte(b.String()))
	return "sha256:" + hex.EncodeToString(sum[:])
}

// roundedCoord renders a coordinate rounded to hashSigDigits significant
// digits, in the shortest form that round-trips the rounded value.
func roundedCoord(v float64) string {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(v, 'g', hashSigDigits, 64), 64)
	if err != nil {
		rounded = v
	}
	return strconv.FormatFloat(rounded, 'g', -1, 64)
}
