package blocks

import "time"

// DateLayout es el formato de Block.Date y de la key del registro.
const DateLayout = "2006-01-02"

// Block es un día sin turnos para toda la clínica. Hay como máximo uno por fecha.
type Block struct {
	ID    string
	Date  string // YYYY-MM-DD en la zona horaria de la clínica
	Notes string

	CreatedAt time.Time
	CreatedBy string
}
