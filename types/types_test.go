/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package types

import "testing"

func TestPageRequestClamping(t *testing.T) {
	tests := []struct {
		page, size         int
		wantPage, wantSize int
		wantOffset         int
	}{
		{1, 10, 1, 10, 0},
		{3, 20, 3, 20, 40},
		{0, 0, 1, DefaultPageSize, 0},
		{-2, -5, 1, DefaultPageSize, 0},
		{2, 1000, 2, MaxPageSize, MaxPageSize},
	}
	for _, tt := range tests {
		p := NewDefaultPageRequest(tt.page, tt.size)
		if p.GetPage() != tt.wantPage || p.GetPageSize() != tt.wantSize || p.GetOffset() != tt.wantOffset {
			t.Errorf("NewDefaultPageRequest(%d, %d) = page %d size %d offset %d",
				tt.page, tt.size, p.GetPage(), p.GetPageSize(), p.GetOffset())
		}
		if p.GetFilter() != nil || len(p.GetOrders()) != 0 {
			t.Errorf("default request carries a filter or orders")
		}
	}
}

func TestPaginationPages(t *testing.T) {
	tests := []struct {
		page, size, total int
		pages             int
		next              bool
	}{
		{1, 10, 0, 0, false},
		{1, 10, 10, 1, false},
		{1, 10, 11, 2, true},
		{2, 2, 5, 3, true},
		{3, 2, 5, 3, false},
	}
	for _, tt := range tests {
		p := NewDefaultPagination[struct{}](tt.page, tt.size)
		p.Total = tt.total
		if p.Pages() != tt.pages || p.HasNext() != tt.next {
			t.Errorf("%+v: pages %d next %v", tt, p.Pages(), p.HasNext())
		}
	}
}

func TestEnumTable(t *testing.T) {
	table := EnumTable{{Name: "a", Desc: "first"}, {Name: "b", Desc: "second"}}

	if !table.IsValid(1) || table.IsValid(2) || table.IsValid(-1) {
		t.Error("IsValid bounds")
	}
	if table.Name(1) != "b" || table.Desc(0) != "first" || table.Number(1) != 1 {
		t.Error("lookup of a valid entry")
	}
	if table.Name(5) != IllegalName || table.Desc(5) != IllegalDesc || table.Number(5) != IllegalValue {
		t.Error("lookup of an invalid entry")
	}
	if n, ok := table.Parse("b"); !ok || n != 1 {
		t.Errorf("Parse(b) = %d, %v", n, ok)
	}
	if n, ok := table.Parse("z"); ok || n != IllegalValue {
		t.Errorf("Parse(z) = %d, %v", n, ok)
	}
}
