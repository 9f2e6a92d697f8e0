package heal

import (
	"fmt"

	"github.com/lumenworks/lumengeo/pkg/mesh"
)

// TriangulateFaces fan-triangulates polygonal faces into triangles with a
// FaceRef per triangle, numbering faces from 1 under the given prefix.
// Faces with fewer than three vertices are skipped. The refs feed straight
// into Options.TriangleRefs so healing findings point back at source faces.
func TriangulateFaces(faces [][]uint32, objectID, facePrefix string) ([]mesh.Triangle, []FaceRef) {
	if facePrefix == "" {
		facePrefix = "face"
	}
	var tris []mesh.Triangle
	var refs []FaceRef
	for fi, face := range faces {
		if len(face) < 3 {
			continue
		}
		for k := 1; k < len(face)-1; k++ {
			tris = append(tris, mesh.Triangle{face[0], face[k], face[k+1]})
			refs = append(refs, FaceRef{
				ObjectID:      objectID,
				FaceID:        fmt.Sprintf("%s_%d", facePrefix, fi+1),
				TriangleIndex: len(tris) - 1,
			})
		}
	}
	return tris, refs
}
