package screens

import (
	"github.com/sandboxops/console/internal/domain/model"
	"github.com/sandboxops/console/internal/listview"
)

// The admin screens load their whole collection once and filter locally.

var signatures = definition[model.Signature]{
	info: Info{
		Slug:     SlugSignatures,
		Title:    "Signatures",
		Mode:     listview.ClientPaginated,
		Endpoint: "/1/signature/list",
		Columns: []Column{
			{Key: "name", Title: "Name"},
			{Key: "type", Title: "Type"},
			{Key: "createdBy", Title: "Created By"},
			{Key: "createdDate", Title: "Created"},
			{Key: "lastModified", Title: "Last Modified"},
			{Key: "status", Title: "Status"},
		},
	},
	search: model.Signature.SearchFields,
	dimensions: []dimensionDef[model.Signature]{
		{Label: "Type", Dimension: listview.Dimension[model.Signature]{
			Name: "type", Kind: listview.KindEnum,
			Options: []string{model.SignatureTypeYARA, model.SignatureTypeRegex, model.SignatureTypeSuricata},
			Value:   func(s model.Signature) string { return s.Type },
		}},
		{Label: "Status", Dimension: listview.Dimension[model.Signature]{
			Name: "status", Kind: listview.KindEnum,
			Options: []string{model.StatusActive, model.StatusInactive},
			Value:   func(s model.Signature) string { return s.Status },
		}},
	},
	row: func(s model.Signature) Row {
		return Row{ID: s.ID, Cells: []string{
			s.Name, s.Type, orDash(s.CreatedBy), s.CreatedAt.Display(), s.ModifiedAt.Display(), s.Status,
		}}
	},
}

var users = definition[model.User]{
	info: Info{
		Slug:     SlugUsers,
		Title:    "Users",
		Mode:     listview.ClientPaginated,
		Endpoint: "/1/auth/users",
		Columns: []Column{
			{Key: "fullName", Title: "Name"},
			{Key: "username", Title: "Username"},
			{Key: "email", Title: "Email"},
			{Key: "role", Title: "Role"},
			{Key: "lastLogin", Title: "Last Login"},
			{Key: "status", Title: "Status"},
		},
	},
	search: model.User.SearchFields,
	dimensions: []dimensionDef[model.User]{
		{Label: "Role", Dimension: listview.Dimension[model.User]{
			Name: "role", Kind: listview.KindEnum,
			Options: []string{model.RoleAdministrator, model.RoleAnalyst, model.RoleViewer},
			Value:   func(u model.User) string { return u.Role },
		}},
		{Label: "Status", Dimension: listview.Dimension[model.User]{
			Name: "status", Kind: listview.KindEnum,
			Options: []string{model.StatusActive, model.StatusInactive},
			Value:   func(u model.User) string { return u.Status },
		}},
	},
	row: func(u model.User) Row {
		return Row{ID: u.ID, Cells: []string{
			u.FullName, u.Username, u.Email, u.Role, u.LastLogin.Display(), u.Status,
		}}
	},
}

var virtualMachines = definition[model.VirtualMachine]{
	info: Info{
		Slug:     SlugVirtualMachines,
		Title:    "Virtual Machines",
		Mode:     listview.ClientPaginated,
		Endpoint: "/1/cape/machines/list",
		Columns: []Column{
			{Key: "name", Title: "Name"},
			{Key: "osType", Title: "OS"},
			{Key: "status", Title: "Status"},
			{Key: "ipAddress", Title: "IP Address"},
			{Key: "createdDate", Title: "Created"},
			{Key: "lastUsed", Title: "Last Used"},
		},
	},
	search: model.VirtualMachine.SearchFields,
	dimensions: []dimensionDef[model.VirtualMachine]{
		{Label: "Status", Dimension: listview.Dimension[model.VirtualMachine]{
			Name: "status", Kind: listview.KindEnum,
			Options: []string{model.VMStatusRunning, model.VMStatusStopped},
			Value:   func(v model.VirtualMachine) string { return v.Status },
		}},
	},
	row: func(v model.VirtualMachine) Row {
		return Row{ID: v.ID, Cells: []string{
			v.Name, v.OSType, v.Status, orDash(v.IPAddress), v.CreatedAt.Display(), v.LastUsed.Display(),
		}}
	},
}
