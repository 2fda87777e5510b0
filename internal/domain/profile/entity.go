package profile

import (
	"github.com/google/uuid"
)

// Fields shared by every representation of a profile. All of them are nullable.
type Fields struct {
	Username        *string  `json:"username"`
	Mail            *string  `json:"mail"`
	Name            *string  `json:"name"`
	SSN             *string  `json:"ssn"`
	Sex             *string  `json:"sex"`
	Birthdate       *Date    `json:"birthdate"`
	BloodGroup      *string  `json:"blood_group"`
	Address         *string  `json:"address"`
	Residence       *string  `json:"residence"`
	Website         []string `json:"website"`
	CurrentLocation []string `json:"current_location"`
	Job             *string  `json:"job"`
	Company         *string  `json:"company"`
}

// Profile is the read view: every attribute plus the server assigned id.
type Profile struct {
	Fields
	ID uuid.UUID `json:"id"`
}

// Create is the payload accepted on creation. The id is always generated.
type Create struct {
	Fields
}

// Patch is a partial update. Only fields present in the payload are applied.
type Patch struct {
	Username        Optional[string]   `json:"username"`
	Mail            Optional[string]   `json:"mail"`
	Name            Optional[string]   `json:"name"`
	SSN             Optional[string]   `json:"ssn"`
	Sex             Optional[string]   `json:"sex"`
	Birthdate       Optional[Date]     `json:"birthdate"`
	BloodGroup      Optional[string]   `json:"blood_group"`
	Address         Optional[string]   `json:"address"`
	Residence       Optional[string]   `json:"residence"`
	Website         Optional[[]string] `json:"website"`
	CurrentLocation Optional[[]string] `json:"current_location"`
	Job             Optional[string]   `json:"job"`
	Company         Optional[string]   `json:"company"`
}

// Empty reports whether no field is present.
func (p Patch) Empty() bool {
	return !p.Username.Set && !p.Mail.Set && !p.Name.Set && !p.SSN.Set &&
		!p.Sex.Set && !p.Birthdate.Set && !p.BloodGroup.Set && !p.Address.Set &&
		!p.Residence.Set && !p.Website.Set && !p.CurrentLocation.Set &&
		!p.Job.Set && !p.Company.Set
}

// Apply writes the present fields of p onto f and returns the result.
func (p Patch) Apply(f Fields) Fields {
	p.Username.applyPtr(&f.Username)
	p.Mail.applyPtr(&f.Mail)
	p.Name.applyPtr(&f.Name)
	p.SSN.applyPtr(&f.SSN)
	p.Sex.applyPtr(&f.Sex)
	p.Birthdate.applyPtr(&f.Birthdate)
	p.BloodGroup.applyPtr(&f.BloodGroup)
	p.Address.applyPtr(&f.Address)
	p.Residence.applyPtr(&f.Residence)
	p.Website.applySlice(&f.Website)
	p.CurrentLocation.applySlice(&f.CurrentLocation)
	p.Job.applyPtr(&f.Job)
	p.Company.applyPtr(&f.Company)
	return f
}
