// seed genera un script SQL de carga inicial (sedes, stock y cajas de bodega) a partir
// de un CSV exportado por el POS anterior. Los exportes vienen en ISO-8859-1 y separados por ';'.
//
// Uso: go run ./cmd/seed [ruta/inventario.csv] [ruta/salida.sql]
// Por defecto lee inventario.csv y escribe seed_inventory.sql en el directorio actual.
//
// Formato de filas (la primera columna indica el tipo):
//
//	sede;ID;CODIGO;NOMBRE;store|warehouse
//	stock;SEDE_ID;ITEM_ID;VARIANTE;CANTIDAD;MINIMO
//	caja;CAJA_ID;SEDE_ID;ITEM_ID;VARIANTE;ETIQUETA;CANTIDAD
package main

import (
	"fmt"
	"os"
)

func main() {
	inPath := "inventario.csv"
	outPath := "seed_inventory.sql"
	if len(os.Args) > 1 {
		inPath = os.Args[1]
	}
	if len(os.Args) > 2 {
		outPath = os.Args[2]
	}

	f, err := os.Open(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	data, err := parseExport(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := writeSQL(out, data); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d sedes, %d líneas de stock, %d cajas\n",
		outPath, len(data.locations), len(data.stock), len(data.boxes))
}
