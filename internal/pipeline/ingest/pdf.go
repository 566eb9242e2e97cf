// Copyright 2026 fanjia1024
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ingest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
)

// ExtractPDFText 提取学习材料 PDF 的正文。空白页被跳过，
// 非空页之间以空行分隔，供下游按段落切片。
func ExtractPDFText(data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}

	reader, err := model.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("解析 PDF failed: %w", err)
	}
	numPages, err := reader.GetNumPages()
	if err != nil {
		return "", fmt.Errorf("读取 PDF 页数failed: %w", err)
	}

	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		text, err := extractPage(reader, i)
		if err != nil {
			return "", err
		}
		if text != "" {
			pages = append(pages, text)
		}
	}
	return strings.Join(pages, "\n\n"), nil
}

func extractPage(reader *model.PdfReader, pageNum int) (string, error) {
	page, err := reader.GetPage(pageNum)
	if err != nil {
		return "", fmt.Errorf("读取第 %d 页failed: %w", pageNum, err)
	}
	ex, err := extractor.New(page)
	if err != nil {
		return "", fmt.Errorf("第 %d 页提取器failed: %w", pageNum, err)
	}
	text, err := ex.ExtractText()
	if err != nil {
		return "", fmt.Errorf("提取第 %d 页failed: %w", pageNum, err)
	}
	return strings.TrimSpace(text), nil
}
