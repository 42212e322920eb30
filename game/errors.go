package game

const (
	ErrorMissingCollider     = "Error: hull requires a capsule collider before enabling."
	ErrorUnsupportedCollider = "Error: collider of type %T is not supported."
	ErrorUnsupportedAxis     = "Error: capsule direction %d is not supported, only the Y axis (%d) is."
	ErrorInvalidProbeSize    = "Error: invalid probe size %vx%v."
	ErrorNilCollider         = "Error: collider %v has no shape."
	ErrorColliderNotFound    = "Error: collider %d is not registered in the world."
	ErrorDuplicateCollider   = "Error: collider %q is already registered."
	ErrorStuck               = "Error: unstuck failed after %d attempts."
)
