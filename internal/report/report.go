// Package report renders tables of encoding results as txt, json, yaml or xlsx.
package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"strings"
)

const (
	FormatTxt  = "txt"
	FormatJson = "json"
	FormatYaml = "yaml"
	FormatXlsx = "xlsx"
)

const noDataFound = "No data found."

var FormatOptions = []string{FormatTxt, FormatJson, FormatYaml, FormatXlsx}

// Field represents the values for a field in a table
type Field struct {
	Name   string
	Values []string
}

// TableValues is a named table. Every field holds one value per row.
type TableValues struct {
	Name        string
	HasRows     bool   // table is meant to be displayed in row form, i.e., a field may have multiple values
	NoDataFound string // message to display when no data is found
	Fields      []Field
}

// NewTable returns a row form table with the given column names.
func NewTable(name string, columns ...string) TableValues {
	tv := TableValues{Name: name, HasRows: true}
	for _, c := range columns {
		tv.Fields = append(tv.Fields, Field{Name: c})
	}
	return tv
}

// AddRow appends one value per field.
func (tv *TableValues) AddRow(values ...string) {
	if len(values) != len(tv.Fields) {
		panic(fmt.Sprintf("table %s: expected %d value(s), got %d", tv.Name, len(tv.Fields), len(values)))
	}
	for i, v := range values {
		tv.Fields[i].Values = append(tv.Fields[i].Values, v)
	}
}

// Rows returns the number of rows in the table.
func (tv *TableValues) Rows() int {
	if len(tv.Fields) == 0 {
		return 0
	}
	return len(tv.Fields[0].Values)
}

// Create generates a report in the specified format.
// The function ensures that all fields have the same number of values before generating the report.
func Create(format string, allTableValues []TableValues) (out []byte, err error) {
	// make sure that all fields have the same number of values
	for _, tableValue := range allTableValues {
		numRows := -1
		for _, fieldValues := range tableValue.Fields {
			if numRows == -1 {
				numRows = len(fieldValues.Values)
				continue
			}
			if len(fieldValues.Values) != numRows {
				return nil, fmt.Errorf("expected %d value(s) for field, found %d", numRows, len(fieldValues.Values))
			}
		}
	}
	switch format {
	case FormatTxt:
		return createTextReport(allTableValues)
	case FormatJson:
		return createJsonReport(allTableValues)
	case FormatYaml:
		return createYamlReport(allTableValues)
	case FormatXlsx:
		return createXlsxReport(allTableValues)
	}
	return nil, fmt.Errorf("expected one of %s, got %s", strings.Join(FormatOptions, ", "), format)
}
