package render

// RenderPriority determines blit order on the screen. Lower values render first
type RenderPriority int

const (
	PriorityBackground RenderPriority = iota
	PriorityMinimap
	PriorityPanel
	PriorityStatus
)
