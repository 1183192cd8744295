package main

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/wms-ledger/internal/application/dto"
)

// catalogo es el archivo de carga inicial: bodegas con sus ubicaciones y productos.
type catalogo struct {
	Bodegas   []bodega   `xml:"bodega"`
	Productos []producto `xml:"producto"`
}

type bodega struct {
	Nombre      string      `xml:"nombre,attr"`
	Ciudad      string      `xml:"ciudad,attr"`
	Capacidad   int64       `xml:"capacidad,attr"`
	Ubicaciones []ubicacion `xml:"ubicacion"`
}

type ubicacion struct {
	Pasillo  string `xml:"pasillo,attr"`
	Estante  string `xml:"estante,attr"`
	Nivel    string `xml:"nivel,attr"`
	Posicion string `xml:"posicion,attr"`
}

type producto struct {
	Codigo    string `xml:"codigo,attr"`
	Nombre    string `xml:"nombre,attr"`
	Categoria string `xml:"categoria,attr"`
	Minimo    int64  `xml:"minimo,attr"`
	Costo     string `xml:"costo,attr"`
	Precio    string `xml:"precio,attr"`
}

// parseCatalogo decodifica el XML aceptando archivos en ISO-8859-1 (exportes de hojas de cálculo).
func parseCatalogo(r io.Reader) (*catalogo, error) {
	var c catalogo
	dec := xml.NewDecoder(r)
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		if strings.EqualFold(charset, "ISO-8859-1") || strings.EqualFold(charset, "ISO8859-1") {
			return transform.NewReader(input, charmap.ISO8859_1.NewDecoder()), nil
		}
		return input, nil
	}
	if err := dec.Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (b bodega) request() dto.CreateWarehouseRequest {
	return dto.CreateWarehouseRequest{Name: strings.TrimSpace(b.Nombre), City: b.Ciudad, Capacity: b.Capacidad}
}

func (u ubicacion) request() dto.CreateLocationRequest {
	return dto.CreateLocationRequest{Aisle: u.Pasillo, Shelf: u.Estante, Level: u.Nivel, Position: u.Posicion}
}

func (p producto) request() (dto.CreateProductRequest, error) {
	cost, err := decimalOrZero(p.Costo)
	if err != nil {
		return dto.CreateProductRequest{}, err
	}
	price, err := decimalOrZero(p.Precio)
	if err != nil {
		return dto.CreateProductRequest{}, err
	}
	return dto.CreateProductRequest{
		Code:        p.Codigo,
		Name:        strings.TrimSpace(p.Nombre),
		Category:    p.Categoria,
		MinQuantity: p.Minimo,
		CostPrice:   cost,
		SalePrice:   price,
	}, nil
}

func decimalOrZero(s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(strings.TrimSpace(s))
}
