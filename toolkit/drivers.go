package toolkit

// Register the built-in drivers so Initialize can find the default one.
import (
	_ "github.com/elizafairlady/go-tabkit/backend/devdraw"
	_ "github.com/elizafairlady/go-tabkit/backend/headless"
)
