package dto

// DevolucaoItemRequest is one product line of a return request.
type DevolucaoItemRequest struct {
	ProdutoID  string `json:"produto_id" binding:"required"`
	Quantidade int    `json:"quantidade"`
}

// SolicitarDevolucaoRequest for requesting a return.
type SolicitarDevolucaoRequest struct {
	EmpresaID  string                 `json:"empresa_id" binding:"required"`
	Observacao string                 `json:"observacao"`
	Itens      []DevolucaoItemRequest `json:"itens"`
}

// RecusarDevolucaoRequest for refusing a return. Motivo is mandatory.
type RecusarDevolucaoRequest struct {
	Motivo string `json:"motivo"`
}
