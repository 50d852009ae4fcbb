/*
Package ply reads and writes PLY (Polygon File Format) files.

Decoding runs in three steps: ParseHeader turns the textual header into a Schema,
DecodeRaw decodes the ascii, binary_little_endian or binary_big_endian data section
into one Column per element property, and Assemble interprets the vertex and face
elements as a mesh.Mesh or mesh.PointCloud. Decode runs all three.

Properties that are not positions, colors or face indices become named vertex or face
attributes. The complete decoded data is kept in the geometry metadata under
mesh.MetadataPLYRaw, and Encode uses it to write elements it does not otherwise
understand back out unchanged.

Polygons are fan triangulated from their first vertex. Non-convex or non-planar
polygons are triangulated the same way and may produce overlapping triangles.
*/
package ply
