package task

// Patch - частичное обновление задачи, nil означает "не менять"
type Patch struct {
	Description *string
	Completed   *bool
}

type PatchOption func(*Patch)

func WithDescription(description string) PatchOption {
	return func(p *Patch) {
		p.Description = &description
	}
}

func WithCompleted(completed bool) PatchOption {
	return func(p *Patch) {
		p.Completed = &completed
	}
}

func NewPatch(options ...PatchOption) Patch {
	var p Patch
	for _, opt := range options {
		if opt != nil {
			opt(&p)
		}
	}
	return p
}

// Normalize обрезает описание; пустое описание игнорируется, а не применяется
func (p Patch) Normalize() Patch {
	if p.Description == nil {
		return p
	}

	description, ok := NormalizeDescription(*p.Description)
	if !ok {
		p.Description = nil
		return p
	}
	p.Description = &description
	return p
}

func (p Patch) IsEmpty() bool {
	return p.Description == nil && p.Completed == nil
}

func (p Patch) Apply(t *Task) {
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}
