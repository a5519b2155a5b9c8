// ABOUTME: Field-level validation for vehicle and authentication input using validator/v10
// ABOUTME: Raw form text is parsed and checked here before any request leaves the client

package fleet

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	platePattern    = regexp.MustCompile(`^[A-Z]{3}-\d{4}$`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{3,}$`)
)

// Validate is the shared validator instance
var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation("plate", func(fl validator.FieldLevel) bool {
		return platePattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("failed to register plate validator: %v", err))
	}
	if err := v.RegisterValidation("availability", func(fl validator.FieldLevel) bool {
		switch Availability(fl.Field().String()) {
		case Available, Maintenance, Unavailable:
			return true
		default:
			return false
		}
	}); err != nil {
		panic(fmt.Sprintf("failed to register availability validator: %v", err))
	}
	if err := v.RegisterValidation("identifier", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return emailPattern.MatchString(s) || usernamePattern.MatchString(s)
	}); err != nil {
		panic(fmt.Sprintf("failed to register identifier validator: %v", err))
	}
	return v
}

// FieldErrors maps a field name to its message
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return strings.Join(parts, "; ")
}

func (fe FieldErrors) setOnce(field, msg string) {
	if _, ok := fe[field]; !ok {
		fe[field] = msg
	}
}

func (fe FieldErrors) errOrNil() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// AsFieldErrors extracts FieldErrors from err
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// Vehicle field messages
const (
	MsgEmptyField      = "Este campo no puede estar vacío"
	MsgPositive        = "Debe ser mayor a 0"
	MsgPlateFormat     = "La placa debe tener el formato AAA-1234 (tres letras y cuatro números)"
	MsgPlateDuplicated = "La placa %s ya está registrada."
	MsgSelectType      = "Selecciona una maquinaria"
	MsgSelectStatus    = "Selecciona una disponibilidad"
)

var requiredMessages = map[string]string{
	"nombre":     "El nombre no puede estar vacío",
	"placa":      "La placa no puede estar vacía",
	"marca":      "La marca no puede estar vacía",
	"modelo":     "El modelo no puede estar vacío",
	"disponible": MsgSelectStatus,
}

// VehicleInput is the payload sent to create or update a vehicle
type VehicleInput struct {
	Name         string  `json:"nombre" validate:"required"`
	Plate        string  `json:"placa" validate:"required,plate"`
	Brand        string  `json:"marca" validate:"required"`
	Model        string  `json:"modelo" validate:"required"`
	TypeID       int     `json:"tipoMaquinariaId" validate:"gt=0"`
	Availability string  `json:"disponible" validate:"required,availability"`
	FuelPerKm    float64 `json:"consumoCombustibleKm" validate:"gt=0"`
	FuelCapacity float64 `json:"capacidadCombustible" validate:"gt=0"`
}

// VehicleForm is raw text as typed by the user
type VehicleForm struct {
	Name         string
	Plate        string
	Brand        string
	Model        string
	TypeID       string
	Availability string
	FuelPerKm    string
	FuelCapacity string
}

// FormFromVehicle prefills a form for editing
func FormFromVehicle(v Vehicle) VehicleForm {
	return VehicleForm{
		Name:         v.Name,
		Plate:        v.Plate,
		Brand:        v.Brand,
		Model:        v.Model,
		TypeID:       strconv.Itoa(v.TypeID),
		Availability: v.Availability,
		FuelPerKm:    strconv.FormatFloat(v.FuelPerKm, 'f', -1, 64),
		FuelCapacity: strconv.FormatFloat(v.FuelCapacity, 'f', -1, 64),
	}
}

// ParseNumber reads a decimal that may use a comma separator.
// Empty or unreadable text reports ok=false.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Parse trims and converts the form into an input, collecting conversion errors
func (f VehicleForm) Parse() (VehicleInput, FieldErrors) {
	errs := FieldErrors{}
	in := VehicleInput{
		Name:         strings.TrimSpace(f.Name),
		Plate:        strings.ToUpper(strings.TrimSpace(f.Plate)),
		Brand:        strings.TrimSpace(f.Brand),
		Model:        strings.TrimSpace(f.Model),
		Availability: strings.TrimSpace(f.Availability),
	}
	if a, ok := NormalizeAvailability(in.Availability); ok {
		in.Availability = string(a)
	}

	if n, ok := ParseNumber(f.TypeID); ok {
		in.TypeID = int(n)
	} else {
		errs["tipoMaquinariaId"] = MsgSelectType
	}
	if n, ok := ParseNumber(f.FuelPerKm); ok {
		in.FuelPerKm = n
	} else {
		errs["consumoCombustibleKm"] = MsgEmptyField
	}
	if n, ok := ParseNumber(f.FuelCapacity); ok {
		in.FuelCapacity = n
	} else {
		errs["capacidadCombustible"] = MsgEmptyField
	}
	return in, errs
}

// Validate checks the input against the field rules
func (in VehicleInput) Validate() FieldErrors {
	errs := FieldErrors{}
	in.collect(errs)
	return errs
}

func (in VehicleInput) collect(errs FieldErrors) {
	err := Validate.Struct(in)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs.setOnce("_", err.Error())
		return
	}
	for _, fe := range verrs {
		field := fe.Field()
		switch {
		case fe.Tag() == "required":
			errs.setOnce(field, requiredMessages[field])
		case fe.Tag() == "plate":
			errs.setOnce(field, MsgPlateFormat)
		case fe.Tag() == "availability":
			errs.setOnce(field, MsgSelectStatus)
		case field == "tipoMaquinariaId":
			errs.setOnce(field, MsgSelectType)
		default:
			errs.setOnce(field, MsgPositive)
		}
	}
}

// CheckDuplicatePlate flags a plate already used by another vehicle.
// editingID excludes the vehicle being edited; zero means none.
func CheckDuplicatePlate(plate string, existing []Vehicle, editingID int) (string, bool) {
	plate = strings.ToUpper(strings.TrimSpace(plate))
	for _, v := range existing {
		if editingID != 0 && v.ID == editingID {
			continue
		}
		if strings.ToUpper(strings.TrimSpace(v.Plate)) == plate {
			return fmt.Sprintf(MsgPlateDuplicated, plate), true
		}
	}
	return "", false
}

// PrepareVehicle parses and validates a form against the loaded list.
// The returned error is a FieldErrors when any field is invalid.
func PrepareVehicle(form VehicleForm, existing []Vehicle, editingID int) (VehicleInput, error) {
	in, errs := form.Parse()
	in.collect(errs)
	if _, bad := errs["placa"]; !bad {
		if msg, dup := CheckDuplicatePlate(in.Plate, existing, editingID); dup {
			errs["placa"] = msg
		}
	}
	return in, errs.errOrNil()
}

// LoginRequest is the sign-in payload
type LoginRequest struct {
	Username string `json:"username" validate:"min=3"`
	Password string `json:"password" validate:"min=1"`
}

// Validate checks the credentials shape
func (r LoginRequest) Validate() error {
	errs := FieldErrors{}
	if err := Validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				switch fe.Field() {
				case "username":
					errs.setOnce("username", "Usuario requerido")
				case "password":
					errs.setOnce("password", "Contraseña requerida")
				}
			}
		}
	}
	return errs.errOrNil()
}

// ForgotPasswordRequest asks for a reset link by username or email
type ForgotPasswordRequest struct {
	Identifier string `json:"identifier" validate:"min=3,identifier"`
}

// Validate trims the identifier and checks it is an email or a username
func (r *ForgotPasswordRequest) Validate() error {
	r.Identifier = strings.TrimSpace(r.Identifier)
	err := Validate.Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Tag() == "min" {
		return FieldErrors{"identifier": "Ingresa tu usuario o correo"}
	}
	return FieldErrors{"identifier": "Ingresa un correo válido o un usuario válido"}
}
