package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/idilsaglam/quickcollect/internal/model"
)

const header = "Title\tPrice\tStock\tDescription\tRemarks"

func TestExportAll_Empty(t *testing.T) {
	assert.Equal(t, header, ExportAll(nil))
	assert.Equal(t, header, ExportAll([]model.Item{}))
}

func TestExportAll_Widget(t *testing.T) {
	items := []model.Item{{
		Title:       "Widget",
		Price:       "9.99",
		Stock:       "5",
		Description: "Line1\nLine2",
		Remarks:     "",
	}}
	assert.Equal(t, header+"\nWidget\t9.99\t5\tLine1 Line2\t-", ExportAll(items))
}

func TestExportAll_DefaultsAndOrder(t *testing.T) {
	items := []model.Item{
		{Title: "newest", Remarks: "r1"},
		{Title: "oldest", Price: "1.5", Stock: "0", Description: "a\n\nb"},
	}
	lines := strings.Split(ExportAll(items), "\n")
	assert.Equal(t, []string{
		header,
		"newest\t0\t0\t\tr1",
		"oldest\t1.5\t0\ta  b\t-",
	}, lines)
}

func TestExportOne_KeepsNewlines(t *testing.T) {
	it := model.Item{Title: "Widget", Description: "Line1\nLine2"}
	assert.Equal(t, "Widget\t0\t0\tLine1\nLine2\t", ExportOne(it))
}

func TestExporter_FlattenSingle(t *testing.T) {
	e := Exporter{FlattenSingle: true}
	it := model.Item{Title: "Widget", Price: "2", Stock: "3", Description: "Line1\nLine2"}
	assert.Equal(t, "Widget\t2\t3\tLine1 Line2\t-", e.One(it))
}

func TestExporter_ChineseHeader(t *testing.T) {
	e := Exporter{Header: HeaderFor("zh")}
	assert.Equal(t, "标题\t价格\t库存\t文案\t备注", e.All(nil))
	assert.Equal(t, HeaderEN, HeaderFor("fr"))
}
