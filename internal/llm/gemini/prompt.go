package gemini

// extractionPrompt instructs the model to return one JSON object covering the
// legal metadata fields. Extracted strings must keep the document's original
// language and script; missing fields are null.
const extractionPrompt = `You are a Legal-AI assistant. Analyze the following case document and extract the information as specified below.
IMPORTANT: Maintain the original language of the document in all extracted text - do not translate any content.

Return a single JSON object with the following fields. Use null for any fields not present. Dates should be in ISO 8601 format (YYYY-MM-DD).

{
  "documentType":    "Type of document in original language (e.g. Judgment/निर्णय, Petition/याचिका, etc.)",
  "petitionType":    "If petition, specify form in original language",
  "courtName":       "Name of court in original language",
  "bench":           ["Names of judges on bench in original language"],
  "caseTitle":       "Case title exactly as written in document",
  "caseNumber":      "Case/docket number exactly as written",
  "filedDate":       "Filing date in YYYY-MM-DD format",
  "dateOfJudgment":  "Judgment date in YYYY-MM-DD format",
  "caseStatus":      "Status in original language",
  "partiesInvolved": {
    "petitioner":    "Petitioner name(s) in original language",
    "respondent":    "Respondent name(s) in original language"
  },
  "advocates":       ["List of counsel/advocates in original language"],
  "legalIssues":     ["Key points of law/issues in original language"],
  "citations":       ["Case citations exactly as written"],
  "statutes":        ["Statutes/sections exactly as referenced"],
  "relevantRules":   ["Court rules/regulations as cited in original language"],
  "reliefSought":    "Remedy/relief claimed in original language",
  "verdict":         "Final verdict/order summary in original language",
  "damagesAwarded":  "Monetary relief amount if any, in original format",
  "deadlines":       ["Deadlines/compliance dates in original language"],
  "nextHearingDate": "Next hearing date in YYYY-MM-DD format if mentioned",
  "keywords":        ["Keywords in original language"],
  "relatedCases":    ["Referenced cases exactly as written"],
  "caseSummary":     "Summary of the case and this document in very simple language understandable by a layman"
}

IMPORTANT INSTRUCTIONS:
1. DO NOT translate any text from the document - keep all extracted text in its original language
2. Maintain original spellings, names, and numbers exactly as they appear
3. Only format dates into YYYY-MM-DD where explicitly mentioned
4. Ensure the JSON is valid and follows the exact structure shown above
5. Use null for any fields where information is not found in the document`
