// Package all wires the built-in storage backends into the storage factory.
//
// It exists purely for side effects: importing it runs each backend's init,
// which registers its factory with the storage package.
//
//   - "csv" (worldpop/internal/storage/csvfile)
package all

import (
	_ "worldpop/internal/storage/csvfile"
)
