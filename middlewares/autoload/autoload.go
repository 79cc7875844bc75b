package autoload

// Import all intent subpackages for side-effect registration.
import (
	_ "calassist/middlewares/calendar"
	_ "calassist/middlewares/fallback"
	_ "calassist/middlewares/greeting"
)
