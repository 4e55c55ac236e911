package form

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestField_Clean(t *testing.T) {
	tests := []struct {
		name    string
		field   Field
		raw     []string
		want    any
		wantErr string
	}{
		{name: "text trimmed", field: Field{Widget: WidgetText}, raw: []string{"  a  "}, want: "a"},
		{name: "text missing optional", field: Field{Widget: WidgetText}, raw: nil, want: ""},
		{name: "text missing required", field: Field{Widget: WidgetText, Required: true}, raw: []string{" "}, wantErr: MsgRequired},
		{name: "checkbox missing", field: Field{Widget: WidgetCheckbox}, raw: nil, want: false},
		{name: "checkbox on", field: Field{Widget: WidgetCheckbox}, raw: []string{"on"}, want: true},
		{name: "checkbox false", field: Field{Widget: WidgetCheckbox}, raw: []string{"False"}, want: false},
		{name: "checkbox required", field: Field{Widget: WidgetCheckbox, Required: true}, raw: []string{"0"}, wantErr: MsgRequired},
		{name: "select valid", field: Field{Widget: WidgetSelect, Choices: ChoicesOf("a", "b")}, raw: []string{"b"}, want: "b"},
		{name: "select invalid", field: Field{Widget: WidgetSelect, Choices: ChoicesOf("a", "b")}, raw: []string{"c"}, wantErr: fmt.Sprintf(MsgInvalidChoice, "c")},
		{name: "select empty optional", field: Field{Widget: WidgetSelect, Choices: ChoicesOf("a")}, raw: []string{""}, want: ""},
		{name: "select empty required", field: Field{Widget: WidgetSelect, Required: true, Choices: ChoicesOf("a")}, raw: nil, wantErr: MsgRequired},
		{name: "select no choices", field: Field{Widget: WidgetSelect, Choices: []Choice{}}, raw: []string{"a"}, wantErr: fmt.Sprintf(MsgInvalidChoice, "a")},
		{name: "multiple subset", field: Field{Widget: WidgetSelectMultiple, Choices: ChoicesOf("a", "b", "c")}, raw: []string{"a", "c"}, want: []string{"a", "c"}},
		{name: "multiple outside", field: Field{Widget: WidgetSelectMultiple, Choices: ChoicesOf("a")}, raw: []string{"a", "z"}, wantErr: fmt.Sprintf(MsgInvalidChoice, "z")},
		{name: "multiple required", field: Field{Widget: WidgetSelectMultiple, Required: true, Choices: ChoicesOf("a")}, raw: nil, wantErr: MsgRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.field.clean(tt.raw)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestForm_Validation(t *testing.T) {
	f := New("doc",
		&Field{Name: "title", Widget: WidgetText, Required: true},
		&Field{Name: "public", Widget: WidgetCheckbox},
	)
	assert.False(t, f.IsValid(context.TODO()), "unbound form is never valid")

	f.Bind(url.Values{"doc-title": {"Report"}, "doc-public": {"on"}})
	require.True(t, f.IsValid(context.TODO()))
	assert.Equal(t, "Report", f.CleanedString("title"))
	assert.True(t, f.CleanedBool("public"))

	f.Bind(url.Values{"title": {"Report"}})
	assert.False(t, f.IsValid(context.TODO()))
	assert.Equal(t, []string{MsgRequired}, f.Errors().Get("title"))
}

func TestForm_CleanHook(t *testing.T) {
	f := New("",
		&Field{Name: "a", Widget: WidgetText},
		&Field{Name: "b", Widget: WidgetText},
	)
	f.SetClean(func(ctx context.Context, cleaned map[string]any) error {
		if cleaned["a"] == cleaned["b"] {
			return errors.New("a and b must differ")
		}
		cleaned["b"] = "rewritten"
		return nil
	})

	f.Bind(url.Values{"a": {"x"}, "b": {"x"}})
	assert.False(t, f.IsValid(context.TODO()))
	assert.Equal(t, []string{"a and b must differ"}, f.Errors().NonField())

	f.Bind(url.Values{"a": {"x"}, "b": {"y"}})
	require.True(t, f.IsValid(context.TODO()))
	assert.Equal(t, "rewritten", f.CleanedString("b"))

	f.SetClean(func(context.Context, map[string]any) error {
		return NewValidationError("a", "bad a")
	})
	f.Bind(url.Values{})
	assert.False(t, f.IsValid(context.TODO()))
	assert.Equal(t, []string{"bad a"}, f.Errors().Get("a"))
}

func TestForm_FieldsAndInitial(t *testing.T) {
	f := New("", &Field{Name: "a", Initial: "field"}, &Field{Name: "b"}, &Field{Name: "c"})

	assert.Equal(t, "field", f.InitialValue("a"))
	f.Initial["a"] = "form"
	assert.Equal(t, "form", f.InitialValue("a"))

	f.SetField(&Field{Name: "b", Label: "B"})
	f.RemoveField("c")
	require.Len(t, f.Fields(), 2)
	assert.Equal(t, "B", f.Fields()[1].Label)
	assert.Nil(t, f.Field("c"))
	assert.Nil(t, f.InitialValue("c"))
}

func TestErrors_Error(t *testing.T) {
	errs := Errors{}
	errs.Add("value", "too long")
	errs.Add("", "broken")

	assert.Equal(t, "__all__: broken; value: too long", errs.Error())
}

func newTestSet(t *testing.T, n int) *FormSet[*Form] {
	set, err := NewFormSet("item", n, func(prefix string, i int) (*Form, error) {
		return New(prefix, &Field{Name: "name", Widget: WidgetText, Required: true}), nil
	})
	require.NoError(t, err)
	return set
}

func TestFormSet(t *testing.T) {
	set := newTestSet(t, 2)
	assert.Equal(t, "item-1", set.Forms()[1].Prefix)
	assert.Equal(t, "2", set.ManagementData().Get("item-TOTAL_FORMS"))

	data := set.ManagementData()
	data.Set("item-0-name", "first")
	data.Set("item-1-name", "second")
	set.Bind(data)
	require.True(t, set.IsValid(context.TODO()))
	assert.Equal(t, "second", set.Forms()[1].CleanedString("name"))

	data.Del("item-1-name")
	set.Bind(data)
	assert.False(t, set.IsValid(context.TODO()))
	assert.Empty(t, set.Errors()[0])
	assert.Equal(t, []string{MsgRequired}, set.Errors()[1].Get("name"))
}

func TestFormSet_ManagementData(t *testing.T) {
	tests := []struct {
		name  string
		total string
		valid bool
		forms int
	}{
		{name: "missing", total: "", valid: false, forms: 0},
		{name: "tampered", total: "3", valid: false, forms: 0},
		{name: "garbage", total: "x", valid: false, forms: 0},
		{name: "fewer", total: "1", valid: true, forms: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := newTestSet(t, 2)
			data := url.Values{"item-0-name": {"a"}, "item-1-name": {"b"}}
			if tt.total != "" {
				data.Set("item-TOTAL_FORMS", tt.total)
			}
			set.Bind(data)

			assert.Equal(t, tt.valid, set.IsValid(context.TODO()))
			assert.Equal(t, tt.forms, set.Len())
			if !tt.valid {
				assert.Equal(t, []string{ErrManagementForm.Error()}, set.NonFormErrors())
			}
		})
	}
}
