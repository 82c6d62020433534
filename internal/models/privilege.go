package models

import "time"

// PrivilegeName identifies an atomic permission. The set is closed: roles,
// direct user grants and the seeded catalog all reference this enumeration.
type PrivilegeName string

const (
	PrivCrearPreguntas    PrivilegeName = "crear_preguntas"
	PrivEditarPreguntas   PrivilegeName = "editar_preguntas"
	PrivEliminarPreguntas PrivilegeName = "eliminar_preguntas"
	PrivPublicarPreguntas PrivilegeName = "publicar_preguntas"
	PrivRevisarPreguntas  PrivilegeName = "revisar_preguntas"

	PrivCrearExamenes     PrivilegeName = "crear_examenes"
	PrivEditarExamenes    PrivilegeName = "editar_examenes"
	PrivEliminarExamenes  PrivilegeName = "eliminar_examenes"
	PrivVerExamenes       PrivilegeName = "ver_examenes"
	PrivResponderExamenes PrivilegeName = "responder_examenes"
	PrivCalificarExamenes PrivilegeName = "calificar_examenes"

	PrivGestionarUsuarios   PrivilegeName = "gestionar_usuarios"
	PrivGestionarRoles      PrivilegeName = "gestionar_roles"
	PrivGestionarCategorias PrivilegeName = "gestionar_categorias"

	PrivVerReportes   PrivilegeName = "ver_reportes"
	PrivExportarDatos PrivilegeName = "exportar_datos"
)

// PrivilegeCategory groups privileges for display.
type PrivilegeCategory string

const (
	CategoryPreguntas      PrivilegeCategory = "preguntas"
	CategoryExamenes       PrivilegeCategory = "examenes"
	CategoryAdministracion PrivilegeCategory = "administracion"
	CategoryReportes       PrivilegeCategory = "reportes"
)

// PrivilegeCategories lists the valid categories in display order.
var PrivilegeCategories = []PrivilegeCategory{
	CategoryPreguntas,
	CategoryExamenes,
	CategoryAdministracion,
	CategoryReportes,
}

// Privilege is a catalog row. The catalog is seeded and immutable through
// the API.
type Privilege struct {
	ID          string            `db:"id" json:"id"`
	Name        PrivilegeName     `db:"name" json:"name"`
	Description string            `db:"description" json:"description"`
	Category    PrivilegeCategory `db:"category" json:"category"`
	Active      bool              `db:"active" json:"active"`
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time         `db:"updated_at" json:"updated_at"`
}

// CatalogEntry is the seed definition for one privilege.
type CatalogEntry struct {
	Name        PrivilegeName
	Description string
	Category    PrivilegeCategory
}

// PrivilegeCatalog is the authoritative definition of every recognized
// privilege. Seeding and name validation both read from here.
var PrivilegeCatalog = []CatalogEntry{
	{PrivCrearPreguntas, "Permite crear nuevas preguntas", CategoryPreguntas},
	{PrivEditarPreguntas, "Permite editar preguntas existentes", CategoryPreguntas},
	{PrivEliminarPreguntas, "Permite eliminar preguntas", CategoryPreguntas},
	{PrivPublicarPreguntas, "Permite publicar preguntas para uso", CategoryPreguntas},
	{PrivRevisarPreguntas, "Permite revisar y aprobar preguntas", CategoryPreguntas},

	{PrivCrearExamenes, "Permite crear nuevos examenes", CategoryExamenes},
	{PrivEditarExamenes, "Permite editar examenes existentes", CategoryExamenes},
	{PrivEliminarExamenes, "Permite eliminar examenes", CategoryExamenes},
	{PrivVerExamenes, "Permite ver examenes disponibles", CategoryExamenes},
	{PrivResponderExamenes, "Permite responder examenes", CategoryExamenes},
	{PrivCalificarExamenes, "Permite calificar examenes", CategoryExamenes},

	{PrivGestionarUsuarios, "Permite administrar usuarios del sistema", CategoryAdministracion},
	{PrivGestionarRoles, "Permite administrar roles y permisos", CategoryAdministracion},
	{PrivGestionarCategorias, "Permite administrar categorias y subcategorias", CategoryAdministracion},

	{PrivVerReportes, "Permite ver reportes y estadisticas", CategoryReportes},
	{PrivExportarDatos, "Permite exportar datos del sistema", CategoryReportes},
}

var privilegeNameSet = func() map[PrivilegeName]struct{} {
	set := make(map[PrivilegeName]struct{}, len(PrivilegeCatalog))
	for _, entry := range PrivilegeCatalog {
		set[entry.Name] = struct{}{}
	}
	return set
}()

// ValidPrivilegeName reports whether name belongs to the catalog.
func ValidPrivilegeName(name PrivilegeName) bool {
	_, ok := privilegeNameSet[name]
	return ok
}

// DescribePrivilege returns the catalog description for name.
func DescribePrivilege(name PrivilegeName) (string, bool) {
	for _, entry := range PrivilegeCatalog {
		if entry.Name == name {
			return entry.Description, true
		}
	}
	return "", false
}

// ValidPrivilegeCategory reports whether category is recognized.
func ValidPrivilegeCategory(category PrivilegeCategory) bool {
	for _, c := range PrivilegeCategories {
		if c == category {
			return true
		}
	}
	return false
}
