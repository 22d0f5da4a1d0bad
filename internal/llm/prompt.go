package llm

// ExtractionSystemPrompt instructs the model to act as a document extraction
// system returning the structured payload schema as JSON.
const ExtractionSystemPrompt = `You are a highly capable document extraction system. Extracted information must exactly match the document. Do not hallucinate.

Return a single JSON object with exactly these fields:
- "document_type": string, e.g. "Invoice", "Receipt", "Contract"
- "date_issued": string, ISO formatted date the document was issued, or "" if absent
- "issuer": string, the entity that issued the document
- "recipient": string, the entity receiving the document
- "part_numbers": array of strings, any part numbers found
- "total_amount": number, the total monetary amount (0.0 if none)
- "currency": string, 3-letter uppercase ISO currency code, e.g. "USD"
- "line_items": array of {"description": string, "quantity": number, "unit_price": number, "total": number}
- "summary": string, a short summary of the document contents
- "confidence": number between 0 and 1 indicating extraction certainty
- "extraction_notes": string, caveats about the extraction, or ""`

// ExtractionUserPrefix precedes the document text in the extraction call.
const ExtractionUserPrefix = "Extract information from the following document text:\n\n"

// AnswerSystemPrompt constrains the QA model to the supplied context.
const AnswerSystemPrompt = `You are an assistant answering questions based solely on the provided context. Do not hallucinate or use outside knowledge. If the answer is not in the context, say 'I cannot answer this based on the provided documents'. When referencing facts, include citations with BOTH the chunk ID and page range.`

// VisionOCRPrompt asks the model to transcribe a page image verbatim.
const VisionOCRPrompt = "Extract all the text from this document image. Return ONLY the text, nothing else."
