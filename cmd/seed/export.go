package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

type locationRow struct {
	id, code, name, kind string
}

type stockRow struct {
	locationID, itemID, variantID string
	quantity                      int64
	minimum                       *int64
}

type boxRow struct {
	id, locationID, itemID, variantID, label string
	quantity                                 int64
}

type export struct {
	locations []locationRow
	stock     []stockRow
	boxes     []boxRow
}

// parseExport lee el CSV en ISO-8859-1. Las líneas vacías y las que empiezan con '#' se ignoran.
func parseExport(r io.Reader) (*export, error) {
	cr := csv.NewReader(transform.NewReader(r, charmap.ISO8859_1.NewDecoder()))
	cr.Comma = ';'
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	out := &export{}
	for n := 1; ; n++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		if err := out.add(rec); err != nil {
			return nil, fmt.Errorf("fila %d: %w", n, err)
		}
	}
}

func (e *export) add(rec []string) error {
	switch strings.ToLower(rec[0]) {
	case "sede":
		if len(rec) < 5 {
			return fmt.Errorf("sede: se esperaban 5 columnas, hay %d", len(rec))
		}
		kind := strings.ToLower(rec[4])
		if kind != "store" && kind != "warehouse" {
			return fmt.Errorf("sede %s: tipo %q inválido", rec[1], rec[4])
		}
		e.locations = append(e.locations, locationRow{id: rec[1], code: rec[2], name: rec[3], kind: kind})
	case "stock":
		if len(rec) < 5 {
			return fmt.Errorf("stock: se esperaban al menos 5 columnas, hay %d", len(rec))
		}
		qty, err := nonNegative(rec[4])
		if err != nil {
			return err
		}
		row := stockRow{locationID: rec[1], itemID: rec[2], variantID: rec[3], quantity: qty}
		if len(rec) > 5 && rec[5] != "" {
			minimum, err := nonNegative(rec[5])
			if err != nil {
				return err
			}
			row.minimum = &minimum
		}
		e.stock = append(e.stock, row)
	case "caja":
		if len(rec) < 7 {
			return fmt.Errorf("caja: se esperaban 7 columnas, hay %d", len(rec))
		}
		qty, err := nonNegative(rec[6])
		if err != nil {
			return err
		}
		e.boxes = append(e.boxes, boxRow{id: rec[1], locationID: rec[2], itemID: rec[3], variantID: rec[4], label: rec[5], quantity: qty})
	case "":
	default:
		return fmt.Errorf("tipo de fila %q desconocido", rec[0])
	}
	return nil
}

func nonNegative(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("cantidad %q: %w", s, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("cantidad negativa %d", n)
	}
	return n, nil
}

// writeSQL escribe los INSERT idempotentes: sedes primero, luego stock y cajas.
func writeSQL(w io.Writer, e *export) error {
	var b strings.Builder
	b.WriteString("-- Carga inicial de inventario\n-- Generado por cmd/seed\n\n")

	for _, l := range e.locations {
		fmt.Fprintf(&b, "INSERT INTO locations (id, code, name, kind) VALUES ('%s', '%s', '%s', '%s')\n",
			escapeSQL(l.id), escapeSQL(l.code), escapeSQL(l.name), l.kind)
		b.WriteString("ON CONFLICT (id) DO UPDATE SET code = EXCLUDED.code, name = EXCLUDED.name, kind = EXCLUDED.kind;\n")
	}
	if len(e.locations) > 0 {
		b.WriteString("\n")
	}

	for _, s := range e.stock {
		minimum := "NULL"
		if s.minimum != nil {
			minimum = strconv.FormatInt(*s.minimum, 10)
		}
		fmt.Fprintf(&b, "INSERT INTO stock_lines (location_id, item_id, variant_id, current_stock, minimum_stock) VALUES ('%s', '%s', '%s', %d, %s)\n",
			escapeSQL(s.locationID), escapeSQL(s.itemID), escapeSQL(s.variantID), s.quantity, minimum)
		b.WriteString("ON CONFLICT (location_id, item_id, variant_id) DO UPDATE SET current_stock = EXCLUDED.current_stock, minimum_stock = EXCLUDED.minimum_stock;\n")
	}
	if len(e.stock) > 0 {
		b.WriteString("\n")
	}

	for _, x := range e.boxes {
		fmt.Fprintf(&b, "INSERT INTO warehouse_boxes (id, location_id, item_id, variant_id, label, quantity) VALUES ('%s', '%s', '%s', '%s', '%s', %d)\n",
			escapeSQL(x.id), escapeSQL(x.locationID), escapeSQL(x.itemID), escapeSQL(x.variantID), escapeSQL(x.label), x.quantity)
		b.WriteString("ON CONFLICT (id) DO UPDATE SET quantity = EXCLUDED.quantity, label = EXCLUDED.label;\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
