package constant

type EventRole int

const (
	EventRoleOrganizer EventRole = iota
	EventRoleAdmin
	EventRoleNone
)

type TemplatePermission string

const (
	// For builder
	TemplateFieldAdd         TemplatePermission = "field:add"
	TemplateFieldUpdate      TemplatePermission = "field:update"
	TemplateFieldRemove      TemplatePermission = "field:remove"
	TemplateFieldMove        TemplatePermission = "field:move"
	TemplateBackgroundUpdate TemplatePermission = "background:update"
	TemplateSettingsUpdate   TemplatePermission = "settings:update"
)
