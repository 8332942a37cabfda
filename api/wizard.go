package api

import "github.com/dfryer1193/wizardry/wizard/domain"

type Wizard struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Title     string  `json:"title"`
	Age       int     `json:"age"`
	ImageName *string `json:"image_name"`
}

// WizardRequest is the body of create and update calls.
type WizardRequest struct {
	Name  string `json:"name" binding:"required"`
	Title string `json:"title" binding:"required"`
	Age   *int   `json:"age" binding:"required"`
}

func (r WizardRequest) ToDomain() domain.CreateWizard {
	w := domain.CreateWizard{
		Name:  r.Name,
		Title: r.Title,
	}
	if r.Age != nil {
		w.Age = *r.Age
	}
	return w
}

func FromDomain(w *domain.Wizard) Wizard {
	return Wizard{
		ID:        w.ID,
		Name:      w.Name,
		Title:     w.Title,
		Age:       w.Age,
		ImageName: w.ImageName,
	}
}

func FromDomainList(wizards []*domain.Wizard) []Wizard {
	out := make([]Wizard, 0, len(wizards))
	for _, w := range wizards {
		out = append(out, FromDomain(w))
	}
	return out
}
