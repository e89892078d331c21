package ui

// iconBytes is a 16x16 PNG: a dark disc on a transparent background.
var iconBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x10, 0x00, 0x00, 0x00, 0x10,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0xf3, 0xff, 0x61, 0x00, 0x00, 0x00,
	0x30, 0x49, 0x44, 0x41, 0x54, 0x78, 0xda, 0x63, 0x60, 0xa0, 0x36, 0x10,
	0x11, 0x91, 0xf8, 0x8f, 0x0f, 0x53, 0xa4, 0x19, 0xaf, 0x21, 0xc4, 0x6a,
	0xc6, 0x6a, 0x08, 0xa9, 0x9a, 0x31, 0x0c, 0x19, 0x35, 0x60, 0x58, 0x18,
	0x40, 0x71, 0x42, 0xa2, 0x4a, 0x52, 0xa6, 0x4a, 0x66, 0x22, 0x07, 0x00,
	0x00, 0x89, 0xf0, 0xd6, 0x55, 0x9a, 0x96, 0x87, 0x27, 0x00, 0x00, 0x00,
	0x00, 0x49, 0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}
